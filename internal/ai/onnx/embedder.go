// Package onnx embeds text locally with a MiniLM-style sentence encoder
// exported to ONNX, so the service can run without an embedding API.
package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSequenceLength = 128

// Embedder runs sentence-transformer ONNX inference with mean pooling.
type Embedder struct {
	mu sync.Mutex

	modelPath string
	vocabPath string
	libPath   string
	dimension int

	session     *ort.DynamicAdvancedSession
	tok         *tokenizer
	inputNames  []string
	outputNames []string
	inited      bool
}

// NewEmbedder creates an embedder that lazily loads the ONNX model and vocab.
func NewEmbedder(modelPath, vocabPath, onnxLibPath string, dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &Embedder{
		modelPath: modelPath,
		vocabPath: vocabPath,
		libPath:   onnxLibPath,
		dimension: dimension,
	}
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

// initOnce loads the ONNX shared library, environment, vocab, and session.
func (e *Embedder) initOnce() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inited {
		return nil
	}

	if e.libPath != "" {
		ort.SetSharedLibraryPath(e.libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}

	tok, err := newTokenizer(e.vocabPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}
	e.tok = tok

	inputs, outputs, err := ort.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}
	e.inputNames = make([]string, len(inputs))
	for i := range inputs {
		e.inputNames[i] = inputs[i].Name
	}
	e.outputNames = []string{outputs[0].Name}

	session, err := ort.NewDynamicAdvancedSession(e.modelPath, e.inputNames, e.outputNames, nil)
	if err != nil {
		return fmt.Errorf("onnx new session: %w", err)
	}
	e.session = session
	e.inited = true
	return nil
}

// Embed tokenizes text, runs the encoder, and mean-pools token states into a
// single sentence vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.initOnce(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, mask := e.tok.Encode(text, maxSequenceLength)
	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("onnx new ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("onnx new mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inputs := []ort.Value{idsTensor, maskTensor}
	// Some exports also take token_type_ids; feed zeros when present.
	if len(e.inputNames) > 2 {
		types := make([]int64, seqLen)
		typeTensor, err := ort.NewTensor(shape, types)
		if err != nil {
			return nil, fmt.Errorf("onnx new type tensor: %w", err)
		}
		defer typeTensor.Destroy()
		inputs = append(inputs, typeTensor)
	}

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run(inputs, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx output is not a float32 tensor")
	}
	defer out.Destroy()

	return meanPool(out.GetData(), int(seqLen), e.dimension, mask)
}

// meanPool averages per-token hidden states over the attention-masked tokens.
func meanPool(data []float32, seqLen, hidden int, mask []int64) ([]float32, error) {
	if len(data) < seqLen*hidden {
		return nil, fmt.Errorf("onnx output size %d < expected %d", len(data), seqLen*hidden)
	}

	vec := make([]float32, hidden)
	var n float32
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		base := t * hidden
		for h := 0; h < hidden; h++ {
			vec[h] += data[base+h]
		}
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("no tokens to pool")
	}
	for h := range vec {
		vec[h] /= n
	}
	return vec, nil
}
