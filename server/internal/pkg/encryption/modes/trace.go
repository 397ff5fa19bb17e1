package modes

import "AESFlow/server/internal/pkg/encryption"

// Step is what CBC reports for one block.
//
// Encrypting: Input is the plaintext block, XorResult is Input XOR the
// previous ciphertext (or IV), Output is the cipher output.
// Decrypting: Input is the ciphertext block, Output is the raw block
// decryption and XorResult is Output XOR the previous ciphertext (or IV),
// i.e. the recovered padded plaintext block.
type Step struct {
	Index     int
	Input     encryption.Block
	XorResult encryption.Block
	Output    encryption.Block
}

// Observer receives one Step per block, in block order
type Observer interface {
	ObserveBlock(step Step)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(step Step)

func (f ObserverFunc) ObserveBlock(step Step) { f(step) }

// Recorder is an Observer that keeps every step
type Recorder struct {
	Steps []Step
}

func (r *Recorder) ObserveBlock(step Step) {
	r.Steps = append(r.Steps, step)
}
