package vision

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// InitRuntime initializes the shared ONNX Runtime environment. Call it once
// per process before loading any model.
func InitRuntime(libraryPath string) error {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// ShutdownRuntime releases the ONNX Runtime environment. Sessions must be
// closed first.
func ShutdownRuntime() {
	_ = ort.DestroyEnvironment()
}
