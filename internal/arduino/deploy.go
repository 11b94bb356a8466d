package arduino

import (
	"context"
)

// Stage identifies how far a deploy progressed.
type Stage string

const (
	StageWrite   Stage = "write"
	StageCompile Stage = "compile"
	StageUpload  Stage = "upload"

	// StageDone is reserved for callers that extend the pipeline with
	// post-upload verification; Deploy itself reports the furthest
	// stage it attempted, so a fully successful deploy ends at
	// StageUpload.
	StageDone Stage = "done"
)

// DeployResult aggregates a write→compile→upload run. Stage records the
// furthest stage attempted; Upload is absent whenever the pipeline
// short-circuited before it. Error carries the failing stage's message
// without replacing the stage's own diagnostics.
type DeployResult struct {
	Stage      Stage          `json:"stage"`
	Success    bool           `json:"success"`
	SketchPath string         `json:"sketch_path,omitempty"`
	Compile    *CompileResult `json:"compile,omitempty"`
	Upload     *UploadResult  `json:"upload,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Pipeline composes the sketch store, compiler and uploader into one
// deploy operation.
type Pipeline struct {
	sketches *SketchStore
	compiler *Compiler
	uploader *Uploader
}

// NewPipeline wires the three stages together.
func NewPipeline(sketches *SketchStore, compiler *Compiler, uploader *Uploader) *Pipeline {
	return &Pipeline{sketches: sketches, compiler: compiler, uploader: uploader}
}

// Deploy writes the sketch, compiles it for the board's FQBN, and
// flashes the artifact to the board's port, short-circuiting at the
// first failing stage. Fail-fast, not transactional: a failed compile
// never triggers an upload, but the written sketch stays on disk
// reflecting the caller's latest intent, which is what a retry or a
// debugging session wants to find there.
func (p *Pipeline) Deploy(ctx context.Context, name, source string, board Board) DeployResult {
	result := DeployResult{Stage: StageWrite}

	sketchPath, err := p.sketches.Write(name, source)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.SketchPath = sketchPath

	result.Stage = StageCompile
	compile, err := p.compiler.Compile(ctx, sketchPath, board.FQBN)
	result.Compile = &compile
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !compile.Success {
		result.Error = "compile failed"
		return result
	}

	result.Stage = StageUpload
	upload, err := p.uploader.Upload(ctx, compile.ArtifactPath, board)
	result.Upload = &upload
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !upload.Success {
		result.Error = "upload failed"
		return result
	}

	result.Success = true
	return result
}
