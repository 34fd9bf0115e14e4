package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/prose-humanizer/internal/schemas"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// MaxRequestBytes bounds every request body
const MaxRequestBytes = 5 << 20

// MaxBatchSize bounds the number of texts in one batch request
const MaxBatchSize = 100

var validate = validator.New()

// TransformRequest is the body of the transform endpoints. Exactly one of Text, Texts or URL is used,
// depending on the endpoint.
type TransformRequest struct {
	Text           string   `json:"text,omitempty"`
	Texts          []string `json:"texts,omitempty" validate:"omitempty,max=100"`
	URL            string   `json:"url,omitempty" validate:"omitempty,url"`
	UseBrowser     bool     `json:"use_browser,omitempty"`
	Language       string   `json:"language,omitempty" validate:"omitempty,len=2|eq=auto"`
	Profile        string   `json:"profile,omitempty" validate:"omitempty,alpha"`
	Intensity      *int     `json:"intensity,omitempty" validate:"omitempty,gte=0,lte=100"`
	Seed           *int64   `json:"seed,omitempty"`
	MaxChangeRatio float64  `json:"max_change_ratio,omitempty" validate:"omitempty,gt=0,lte=1"`
	Keywords       []string `json:"keywords,omitempty" validate:"dive,required"`
	BrandTerms     []string `json:"brand_terms,omitempty" validate:"dive,required"`
	ChunkSize      int      `json:"chunk_size,omitempty" validate:"gte=0"`
}

// DetectRequest is the body of POST /detect
type DetectRequest struct {
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	Language string `json:"language,omitempty" validate:"omitempty,len=2|eq=auto"`
}

// decodeRequest reads a JSON body, checks it against the request schema, decodes it into dst and
// runs struct validation.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return maxBytes
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if !json.Valid(body) {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := schemas.Validate(schemas.TransformRequestSchema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts the first validator failure into an ErrValidation
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed %q check", fe.Tag()),
		}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// pipelineConfig builds the run configuration from the server defaults and the request overrides.
func (req *TransformRequest) pipelineConfig(defaults types.PipelineConfig) types.PipelineConfig {
	cfg := defaults
	if req.Language != "" {
		cfg.Language = strings.ToLower(req.Language)
	}
	if req.Profile != "" {
		cfg.Profile = req.Profile
	}
	if req.Intensity != nil {
		cfg.Intensity = *req.Intensity
	}
	if req.MaxChangeRatio > 0 {
		cfg.Constraints.MaxChangeRatio = req.MaxChangeRatio
	}
	cfg.Constraints.Keywords = append(append([]string(nil), defaults.Constraints.Keywords...), req.Keywords...)
	cfg.Preserve.BrandTerms = append(append([]string(nil), defaults.Preserve.BrandTerms...), req.BrandTerms...)
	if req.Seed != nil {
		cfg = cfg.WithSeed(*req.Seed)
	}
	return cfg
}
