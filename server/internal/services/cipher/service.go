package cipher

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"AESFlow/server/internal/pkg/encryption"
	"AESFlow/server/internal/pkg/encryption/hexutil"
	"AESFlow/server/internal/pkg/encryption/modes"
	"AESFlow/server/internal/pkg/helpers"
	"AESFlow/server/internal/protocol"
)

var (
	// ErrMessageTooLarge is returned for plaintext over the configured limit
	ErrMessageTooLarge = errors.New("message too large")
	// ErrArchiveDisabled is returned by run lookups when no archive is configured
	ErrArchiveDisabled = errors.New("run archive is disabled")
)

// Archive stores traced runs
type Archive interface {
	SaveRun(ctx context.Context, run *protocol.Run) (int64, error)
	GetRun(ctx context.Context, id int64) (*protocol.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*protocol.Run, error)
}

// EncryptRequest holds the text-level inputs of an encryption. An empty
// IVHex asks the service to generate one.
type EncryptRequest struct {
	Plaintext string
	KeyHex    string
	IVHex     string
	Trace     bool
}

// DecryptRequest holds the hex-level inputs of a decryption
type DecryptRequest struct {
	CiphertextHex string
	KeyHex        string
	IVHex         string
	Trace         bool
}

type Service struct {
	archive          Archive
	broadcastHandler func(event interface{})
	maxMessageBytes  int
	random           io.Reader
	logger           *helpers.Logger
}

// NewService creates the cipher service. archive may be nil.
func NewService(archive Archive, maxMessageBytes int) *Service {
	return &Service{
		archive:         archive,
		maxMessageBytes: maxMessageBytes,
		random:          rand.Reader,
		logger:          helpers.NewLogger("CipherService"),
	}
}

// SetBroadcastHandler sets the callback for broadcasting trace events
func (s *Service) SetBroadcastHandler(handler func(event interface{})) {
	s.broadcastHandler = handler
}

// MaxMessageBytes returns the plaintext size limit, zero meaning none
func (s *Service) MaxMessageBytes() int {
	return s.maxMessageBytes
}

// SetLogger replaces the service logger
func (s *Service) SetLogger(logger *helpers.Logger) {
	s.logger = logger
}

// Encrypt pads and encrypts a UTF-8 message under a hex key
func (s *Service) Encrypt(ctx context.Context, req EncryptRequest) (*protocol.EncryptResult, error) {
	if s.maxMessageBytes > 0 && len(req.Plaintext) > s.maxMessageBytes {
		return nil, ErrMessageTooLarge
	}

	key, err := hexutil.HexToBytes(req.KeyHex)
	if err != nil {
		return nil, err
	}

	var iv []byte
	if req.IVHex != "" {
		if iv, err = hexutil.HexToBytes(req.IVHex); err != nil {
			return nil, err
		}
		if iv == nil {
			iv = []byte{}
		}
	}

	rec, obs := newRecorder(req.Trace)
	res, err := modes.EncryptCBC(hexutil.TextToBytes(req.Plaintext), key, iv, obs)
	if err != nil {
		return nil, err
	}

	out := &protocol.EncryptResult{
		IVHex:         hexutil.BytesToHex(res.IV),
		CiphertextHex: hexutil.BytesToHex(res.Ciphertext),
		Algorithm:     algorithmName(len(key)),
	}
	if rec != nil {
		out.Trace = buildTrace(protocol.OperationEncrypt, res.IV, res.PaddedLength, res.Ciphertext, rec.Steps)
		s.publish(ctx, len(key)*8, out.CiphertextHex, out.Trace)
	}
	return out, nil
}

// Decrypt decrypts hex ciphertext and returns the recovered UTF-8 text
func (s *Service) Decrypt(ctx context.Context, req DecryptRequest) (*protocol.DecryptResult, error) {
	ciphertext, err := hexutil.HexToBytes(req.CiphertextHex)
	if err != nil {
		return nil, err
	}
	// Padding adds at most one block to the largest accepted plaintext
	if s.maxMessageBytes > 0 && len(ciphertext) > s.maxMessageBytes+encryption.BlockSize {
		return nil, ErrMessageTooLarge
	}
	key, err := hexutil.HexToBytes(req.KeyHex)
	if err != nil {
		return nil, err
	}
	iv, err := hexutil.HexToBytes(req.IVHex)
	if err != nil {
		return nil, err
	}

	rec, obs := newRecorder(req.Trace)
	plaintext, err := modes.DecryptCBC(ciphertext, key, iv, obs)
	if err != nil {
		if errors.Is(err, encryption.ErrDecryptionFailed) {
			s.logger.Warn("Decryption failed", len(ciphertext))
		}
		return nil, err
	}

	out := &protocol.DecryptResult{
		PlaintextText: hexutil.BytesToText(plaintext),
		Algorithm:     algorithmName(len(key)),
	}
	if rec != nil {
		out.Trace = buildTrace(protocol.OperationDecrypt, iv, len(ciphertext), plaintext, rec.Steps)
		s.publish(ctx, len(key)*8, hexutil.BytesToHex(ciphertext), out.Trace)
	}
	return out, nil
}

// GenerateKey returns a random key of the given size as hex
func (s *Service) GenerateKey(bits int) (string, error) {
	key, err := modes.GenerateKey(s.random, bits)
	if err != nil {
		return "", err
	}
	return hexutil.BytesToHex(key), nil
}

// GenerateIV returns a random IV as hex
func (s *Service) GenerateIV() (string, error) {
	iv, err := modes.GenerateIV(s.random)
	if err != nil {
		return "", err
	}
	return hexutil.BytesToHex(iv), nil
}

// GetRun returns an archived run, or nil if it does not exist
func (s *Service) GetRun(ctx context.Context, id int64) (*protocol.Run, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.GetRun(ctx, id)
}

// ListRuns returns the most recent archived runs
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*protocol.Run, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	runs, err := s.archive.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = make([]*protocol.Run, 0)
	}
	return runs, nil
}

func newRecorder(enabled bool) (*modes.Recorder, modes.Observer) {
	if !enabled {
		return nil, nil
	}
	rec := &modes.Recorder{}
	return rec, rec
}

func algorithmName(keyLen int) string {
	switch keyLen {
	case encryption.AES128KeySize:
		return protocol.AES128
	case encryption.AES192KeySize:
		return protocol.AES192
	case encryption.AES256KeySize:
		return protocol.AES256
	default:
		return fmt.Sprintf("AES-%d", keyLen*8)
	}
}

func buildTrace(op protocol.Operation, iv []byte, paddedLength int, final []byte, steps []modes.Step) *protocol.StepTrace {
	trace := &protocol.StepTrace{
		Operation:         op,
		IVHex:             hexutil.BytesToHex(iv),
		PaddedLengthBytes: paddedLength,
		FinalResultHex:    hexutil.BytesToHex(final),
		Blocks:            make([]protocol.BlockRecord, 0, len(steps)),
	}
	for _, step := range steps {
		trace.Blocks = append(trace.Blocks, protocol.BlockRecord{
			Index:          step.Index,
			InputBlockHex:  hexutil.BytesToHex(step.Input[:]),
			XorResultHex:   hexutil.BytesToHex(step.XorResult[:]),
			OutputBlockHex: hexutil.BytesToHex(step.Output[:]),
		})
	}
	return trace
}

// redactTrace keeps only the ciphertext side of a trace. On encrypt the
// input and XOR columns are plaintext; on decrypt the XOR column is the
// plaintext and the raw block output is the plaintext XOR a public block.
func redactTrace(trace *protocol.StepTrace) *protocol.StepTrace {
	out := *trace
	out.Blocks = make([]protocol.BlockRecord, len(trace.Blocks))
	for i, b := range trace.Blocks {
		r := protocol.BlockRecord{Index: b.Index}
		if trace.Operation == protocol.OperationEncrypt {
			r.OutputBlockHex = b.OutputBlockHex
		} else {
			r.InputBlockHex = b.InputBlockHex
		}
		out.Blocks[i] = r
	}
	if trace.Operation == protocol.OperationDecrypt {
		out.FinalResultHex = ""
	}
	return &out
}

// publish fans a finished trace out to viewers and archives it. Only the
// redacted trace leaves the call; the caller keeps the full one.
func (s *Service) publish(ctx context.Context, keyBits int, ciphertextHex string, trace *protocol.StepTrace) {
	now := time.Now().Unix()
	public := redactTrace(trace)

	if s.archive != nil {
		run := &protocol.Run{
			Operation:     public.Operation,
			KeyBits:       keyBits,
			IVHex:         public.IVHex,
			CiphertextHex: ciphertextHex,
			PaddedLength:  public.PaddedLengthBytes,
			FinalResult:   public.FinalResultHex,
			Trace:         public,
			CreatedAt:     now,
		}
		if id, err := s.archive.SaveRun(ctx, run); err != nil {
			s.logger.Error("Failed to archive run", err, public.Operation)
		} else {
			s.logger.Debug("Archived run", id, public.Operation)
		}
	}

	if s.broadcastHandler != nil {
		s.broadcastHandler(&protocol.WebSocketEvent{
			Type:      "trace",
			Timestamp: now,
			Data:      public,
		})
	}
}
