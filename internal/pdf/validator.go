package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
)

// Inspector reads document-level facts before extraction
type Inspector interface {
	Inspect(path string) (*DocumentMeta, error)
}

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that path names a non-empty PDF file within the size limit
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "file does not exist", err).WithFile(filePath)
	}
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "cannot access file", err).WithFile(filePath)
	}

	if fileInfo.IsDir() {
		return pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "path is a directory, not a file").WithFile(filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "file is not a PDF").WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "file is empty").WithFile(filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return pdferrors.New(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)).
			WithFile(filePath)
	}

	return nil
}

// Inspect validates the file and reads its page count and version with pdfcpu
func (v *Validator) Inspect(filePath string) (*DocumentMeta, error) {
	if err := v.ValidateFile(filePath); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "failed to open file", err).WithFile(filePath)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to read PDF context", err).
			WithFile(filePath)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to ensure page count", err).
			WithFile(filePath)
	}

	meta := &DocumentMeta{
		Path:      filePath,
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		meta.Version = ctx.HeaderVersion.String()
	}
	if info, err := file.Stat(); err == nil {
		meta.Size = info.Size()
	}

	return meta, nil
}
