package protocol

import (
	"time"
)

// Algorithm names reported to clients
const (
	AES128 = "AES-128"
	AES192 = "AES-192"
	AES256 = "AES-256"
)

// Operation identifies which direction a run went
type Operation string

const (
	OperationEncrypt Operation = "encrypt"
	OperationDecrypt Operation = "decrypt"
)

// WebSocket deadlines
const (
	PongWait     = 60 * time.Second
	PingPeriod   = 30 * time.Second
	WriteTimeout = 10 * time.Second
)

// BlockRecord is one CBC step as the visualizer sees it
type BlockRecord struct {
	Index          int    `json:"index"`
	InputBlockHex  string `json:"input_block"`
	XorResultHex   string `json:"xor_result"`
	OutputBlockHex string `json:"output_block"`
}

// StepTrace is the per-call record consumed by the visualization layer. It
// only carries values derivable from the call's inputs and result.
type StepTrace struct {
	Operation         Operation     `json:"operation"`
	IVHex             string        `json:"iv"`
	PaddedLengthBytes int           `json:"padded_length"`
	FinalResultHex    string        `json:"final_result"`
	Blocks            []BlockRecord `json:"blocks"`
}

// EncryptResult is returned by the encrypt operation
type EncryptResult struct {
	IVHex         string     `json:"iv"`
	CiphertextHex string     `json:"ciphertext"`
	Algorithm     string     `json:"algorithm"`
	Trace         *StepTrace `json:"trace,omitempty"`
}

// DecryptResult is returned by the decrypt operation
type DecryptResult struct {
	PlaintextText string     `json:"plaintext"`
	Algorithm     string     `json:"algorithm"`
	Trace         *StepTrace `json:"trace,omitempty"`
}

// Run is an archived trace. It never contains key material or plaintext:
// only ciphertext-side blocks are kept, and FinalResult is empty for
// decryptions.
type Run struct {
	ID            int64      `json:"id"`
	Fingerprint   string     `json:"fingerprint"`
	Operation     Operation  `json:"operation"`
	KeyBits       int        `json:"key_bits"`
	IVHex         string     `json:"iv"`
	CiphertextHex string     `json:"ciphertext"`
	PaddedLength  int        `json:"padded_length"`
	FinalResult   string     `json:"final_result"`
	Trace         *StepTrace `json:"trace"`
	CreatedAt     int64      `json:"created_at"`
}

// WebSocketEvent is pushed to connected visualizers
type WebSocketEvent struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ErrorResponse is the JSON body of a failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}
