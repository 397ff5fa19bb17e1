//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"AESFlow/server/internal/pkg/helpers"
	"AESFlow/server/internal/services/cipher"
)

func main() {
	logger := helpers.NewLogger("WASM")

	// No archive in the browser; traces stay with the page
	svc := cipher.NewService(nil, 1<<20)
	svc.SetLogger(logger)
	registerWasm(svc)

	// Export a ready flag to signal that WASM is ready
	js.Global().Set("WasmReady", js.ValueOf(true))
	logger.Info("WASM module ready")

	// Keep the program running indefinitely
	<-make(chan struct{})
}
