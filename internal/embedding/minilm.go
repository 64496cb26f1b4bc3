package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"path2prevention/internal/config"
)

// MiniLMEmbedder runs all-MiniLM-L6-v2 through ONNX Runtime and mean-pools
// the token embeddings into one sentence vector.
type MiniLMEmbedder struct {
	mu sync.Mutex

	modelPath string
	vocabPath string
	libPath   string
	maxLen    int

	tokenizer  *WordPieceTokenizer
	session    *ort.DynamicAdvancedSession
	inputNames []string
	inited     bool
}

// NewMiniLMEmbedder creates an embedder that loads the model and vocabulary
// on first use.
func NewMiniLMEmbedder(modelPath, vocabPath, onnxLibPath string, maxLen int) *MiniLMEmbedder {
	if maxLen <= 0 {
		maxLen = 256
	}
	return &MiniLMEmbedder{
		modelPath: modelPath,
		vocabPath: vocabPath,
		libPath:   onnxLibPath,
		maxLen:    maxLen,
	}
}

func (e *MiniLMEmbedder) Dimensions() int {
	return config.EmbeddingDimensions
}

// initLocked must be called with e.mu held.
func (e *MiniLMEmbedder) initLocked() error {
	if e.inited {
		return nil
	}

	if e.libPath != "" {
		ort.SetSharedLibraryPath(e.libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx init environment: %w", err)
		}
	}

	tokenizer, err := LoadWordPieceTokenizer(e.vocabPath, e.maxLen)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}
	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}

	// The first output is last_hidden_state [batch, seq, hidden].
	session, err := ort.NewDynamicAdvancedSession(e.modelPath, inputNames, []string{outputs[0].Name}, nil)
	if err != nil {
		return fmt.Errorf("onnx new session: %w", err)
	}

	e.tokenizer = tokenizer
	e.session = session
	e.inputNames = inputNames
	e.inited = true
	return nil
}

func (e *MiniLMEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = Prepare(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.initLocked(); err != nil {
		return nil, err
	}

	ids := e.tokenizer.Encode(text)
	seq := int64(len(ids))
	mask := make([]int64, len(ids))
	typeIDs := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	shape := ort.NewShape(1, seq)
	inputs := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		var data []int64
		switch name {
		case "input_ids":
			data = ids
		case "attention_mask":
			data = mask
		case "token_type_ids":
			data = typeIDs
		default:
			return nil, fmt.Errorf("onnx model has unexpected input %q", name)
		}
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("onnx new input tensor: %w", err)
		}
		inputs = append(inputs, tensor)
	}

	hidden := int64(e.Dimensions())
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seq, hidden))
	if err != nil {
		return nil, fmt.Errorf("onnx new output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run(inputs, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	pooled := MeanPool(output.GetData(), mask, int(hidden))
	return Normalize(pooled), nil
}

func (e *MiniLMEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
		e.session = nil
	}
	e.inited = false
	return nil
}

// MeanPool averages the token vectors of a [seq, hidden] row-major matrix,
// counting only positions whose attention mask is set.
func MeanPool(tokens []float32, mask []int64, hidden int) []float32 {
	out := make([]float32, hidden)
	var count float32
	for i, m := range mask {
		if m == 0 {
			continue
		}
		row := tokens[i*hidden : (i+1)*hidden]
		for j, v := range row {
			out[j] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] /= count
	}
	return out
}
