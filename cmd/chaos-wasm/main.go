//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-chaososc/chaososc"
	"github.com/cwbudde/algo-chaososc/plugin"
)

const maxBlock = 128

var (
	globalPlugin *plugin.Plugin
	left         []float32
	right        []float32
	outputBuffer []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmGetParam", js.FuncOf(wasmGetParam))
	js.Global().Set("wasmParamInfo", js.FuncOf(wasmParamInfo))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM chaos oscillator loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()

	p := plugin.New()
	if err := p.SetSampleRate(float32(sampleRate)); err != nil {
		println("init failed:", err.Error())
		return nil
	}
	globalPlugin = p

	left = make([]float32, maxBlock)
	right = make([]float32, maxBlock)
	outputBuffer = make([]float32, maxBlock*2)

	println("Chaos oscillator initialized at", int(sampleRate), "Hz")
	return nil
}

// paramIndex accepts either a numeric index or a parameter key.
func paramIndex(v js.Value) (int, bool) {
	if v.Type() == js.TypeString {
		return chaososc.ParamIndex(v.String())
	}
	if v.Type() == js.TypeNumber {
		return v.Int(), true
	}
	return 0, false
}

func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalPlugin == nil {
		return nil
	}
	idx, ok := paramIndex(args[0])
	if !ok {
		return nil
	}
	globalPlugin.SetParameter(int32(idx), float32(args[1].Float()))
	return nil
}

func wasmGetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlugin == nil {
		return 0
	}
	idx, ok := paramIndex(args[0])
	if !ok {
		return 0
	}
	return float64(globalPlugin.GetParameter(int32(idx)))
}

// wasmParamInfo returns name, display text and unit label for every parameter.
func wasmParamInfo(this js.Value, args []js.Value) interface{} {
	if globalPlugin == nil {
		return nil
	}
	out := make([]interface{}, chaososc.NumParams)
	for i := 0; i < chaososc.NumParams; i++ {
		idx := int32(i)
		out[i] = map[string]interface{}{
			"key":   chaososc.ParamKey(i),
			"name":  globalPlugin.ParameterName(idx),
			"text":  globalPlugin.ParameterText(idx),
			"label": globalPlugin.ParameterLabel(idx),
			"value": float64(globalPlugin.GetParameter(idx)),
		}
	}
	return out
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlugin == nil {
		return 0
	}

	numFrames := min(max(args[0].Int(), 0), maxBlock)
	if numFrames == 0 {
		return 0
	}
	globalPlugin.Process([][]float32{left[:numFrames], right[:numFrames]})
	for i := 0; i < numFrames; i++ {
		outputBuffer[i*2] = left[i]
		outputBuffer[i*2+1] = right[i]
	}

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
