//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"AESFlow/server/internal/services/cipher"
)

func errorObject(msg string) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("error", msg)
	return obj
}

// guard turns a panic inside a binding into an error object
func guard(name string, fn func(args []js.Value) js.Value) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				result = errorObject(fmt.Sprintf("%s panic: %v", name, r))
			}
		}()
		return fn(args)
	})
}

func stringArg(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

func boolArg(args []js.Value, i int) bool {
	return i < len(args) && args[i].Type() == js.TypeBoolean && args[i].Bool()
}

func setTrace(obj js.Value, trace interface{}) {
	data, err := json.Marshal(trace)
	if err != nil {
		return
	}
	obj.Set("trace", string(data))
}

func registerWasm(svc *cipher.Service) {
	// AESFlow.encrypt(plaintext, keyHex, ivHex?, trace?) -> {iv, ciphertext, trace?}
	encrypt := guard("encrypt", func(args []js.Value) js.Value {
		if len(args) < 2 {
			return errorObject("insufficient args")
		}
		res, err := svc.Encrypt(context.Background(), cipher.EncryptRequest{
			Plaintext: stringArg(args, 0),
			KeyHex:    stringArg(args, 1),
			IVHex:     stringArg(args, 2),
			Trace:     boolArg(args, 3),
		})
		if err != nil {
			return errorObject(err.Error())
		}

		obj := js.Global().Get("Object").New()
		obj.Set("iv", res.IVHex)
		obj.Set("ciphertext", res.CiphertextHex)
		if res.Trace != nil {
			setTrace(obj, res.Trace)
		}
		return obj
	})

	// AESFlow.decrypt(ciphertextHex, keyHex, ivHex, trace?) -> {plaintext, trace?}
	decrypt := guard("decrypt", func(args []js.Value) js.Value {
		if len(args) < 3 {
			return errorObject("insufficient args")
		}
		res, err := svc.Decrypt(context.Background(), cipher.DecryptRequest{
			CiphertextHex: stringArg(args, 0),
			KeyHex:        stringArg(args, 1),
			IVHex:         stringArg(args, 2),
			Trace:         boolArg(args, 3),
		})
		if err != nil {
			return errorObject(err.Error())
		}

		obj := js.Global().Get("Object").New()
		obj.Set("plaintext", res.PlaintextText)
		if res.Trace != nil {
			setTrace(obj, res.Trace)
		}
		return obj
	})

	// AESFlow.generateKey(bits) -> {key}
	generateKey := guard("generateKey", func(args []js.Value) js.Value {
		bits := 128
		if len(args) > 0 && args[0].Type() == js.TypeNumber {
			bits = args[0].Int()
		}
		key, err := svc.GenerateKey(bits)
		if err != nil {
			return errorObject(err.Error())
		}
		obj := js.Global().Get("Object").New()
		obj.Set("key", key)
		return obj
	})

	// AESFlow.generateIV() -> {iv}
	generateIV := guard("generateIV", func(args []js.Value) js.Value {
		iv, err := svc.GenerateIV()
		if err != nil {
			return errorObject(err.Error())
		}
		obj := js.Global().Get("Object").New()
		obj.Set("iv", iv)
		return obj
	})

	wasmObj := js.Global().Get("AESFlow")
	if wasmObj.Type() == js.TypeUndefined {
		wasmObj = js.Global().Get("Object").New()
		js.Global().Set("AESFlow", wasmObj)
	}
	wasmObj.Set("encrypt", encrypt)
	wasmObj.Set("decrypt", decrypt)
	wasmObj.Set("generateKey", generateKey)
	wasmObj.Set("generateIV", generateIV)
}
