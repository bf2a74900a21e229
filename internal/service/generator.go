package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vaultpass/ecomkit-go/internal/crypto"
	"github.com/vaultpass/ecomkit-go/internal/model"
)

const defaultBatchCount = 5

var ErrBatchSizeExceeded = errors.New("batch size exceeded")

// Recorder receives audit records of generated artifacts.
type Recorder interface {
	Record(ctx context.Context, artifacts ...model.Artifact) error
}

// NopRecorder discards every record. It is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, ...model.Artifact) error { return nil }

// GeneratorService handles password generation business logic.
type GeneratorService struct {
	defaults crypto.GenerationConfig
	workers  int
	recorder Recorder
	hash     crypto.HashParams
	now      func() time.Time
}

// NewGeneratorService creates a new GeneratorService. defaults fill fields a
// request leaves unset; workers bounds batch parallelism.
func NewGeneratorService(defaults crypto.GenerationConfig, workers int, recorder Recorder) *GeneratorService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &GeneratorService{
		defaults: defaults,
		workers:  max(1, workers),
		recorder: recorder,
		hash:     crypto.DefaultHashParams(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate produces a single password from the request options.
func (s *GeneratorService) Generate(ctx context.Context, opts model.PasswordOptions) (model.GenerateResponse, error) {
	cfg := opts.Resolve(s.defaults)
	if err := model.ValidateConfig("", cfg); err != nil {
		return model.GenerateResponse{}, err
	}

	password, report, err := generateAndScore(cfg)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	resp := model.GenerateResponse{
		ID:          uuid.NewString(),
		Password:    password,
		Strength:    report,
		Options:     model.NewPasswordConfig(cfg),
		GeneratedAt: s.now(),
	}
	s.record(ctx, passwordArtifact(resp.ID, "custom", "", report, resp.GeneratedAt))
	return resp, nil
}

// GenerateEcommerce produces a password from a credential type preset.
func (s *GeneratorService) GenerateEcommerce(ctx context.Context, req model.EcommerceRequest) (model.EcommerceResponse, error) {
	if err := req.Validate(); err != nil {
		return model.EcommerceResponse{}, err
	}
	if req.Type == "" {
		req.Type = TypeCustomer
	}

	cfg := PresetFor(req.Type).Config
	if req.CustomLength != nil {
		cfg.Length = *req.CustomLength
	}

	password, report, err := generateAndScore(cfg)
	if err != nil {
		return model.EcommerceResponse{}, err
	}

	resp := model.EcommerceResponse{
		ID:              uuid.NewString(),
		Password:        password,
		Type:            req.Type,
		UserRole:        req.UserRole,
		Strength:        report,
		Config:          model.NewPasswordConfig(cfg),
		Recommendations: Recommendations(req.Type),
		GeneratedAt:     s.now(),
	}
	if req.IncludeHash {
		resp.Hash, err = crypto.HashCredential(password, s.hash)
		if err != nil {
			return model.EcommerceResponse{}, fmt.Errorf("hashing credential: %w", err)
		}
	}

	s.record(ctx, passwordArtifact(resp.ID, req.Type, "", report, resp.GeneratedAt))
	return resp, nil
}

// GenerateBatch produces count independent passwords sharing one config.
// Passwords are generated concurrently; the result keeps request order.
func (s *GeneratorService) GenerateBatch(ctx context.Context, req model.BatchRequest) (model.BatchResponse, error) {
	count := defaultBatchCount
	if req.Count != nil {
		count = *req.Count
	}
	if count > model.MaxPasswordBatch {
		return model.BatchResponse{}, fmt.Errorf("%w: at most %d passwords per batch", ErrBatchSizeExceeded, model.MaxPasswordBatch)
	}
	if count < 1 {
		var errs model.ValidationErrors
		errs.Add("count", "count must be at least 1")
		return model.BatchResponse{}, errs
	}

	cfg := req.Options.Resolve(s.defaults)
	if err := model.ValidateConfig("options.", cfg); err != nil {
		return model.BatchResponse{}, err
	}
	if req.Type == "" {
		req.Type = TypeCustomer
	}

	items := make([]model.BatchItem, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			password, report, err := generateAndScore(cfg)
			if err != nil {
				return err
			}
			items[i] = model.BatchItem{
				ID:          uuid.NewString(),
				Index:       i + 1,
				Password:    password,
				Strength:    report,
				GeneratedAt: s.now(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BatchResponse{}, err
	}

	resp := model.BatchResponse{
		BatchID:     uuid.NewString(),
		Type:        req.Type,
		Count:       count,
		Passwords:   items,
		Options:     model.NewPasswordConfig(cfg),
		GeneratedAt: s.now(),
	}

	artifacts := make([]model.Artifact, len(items))
	for i, item := range items {
		artifacts[i] = passwordArtifact(item.ID, req.Type, resp.BatchID, item.Strength, item.GeneratedAt)
		artifacts[i].RequestedBy = req.RequestedBy
	}
	s.record(ctx, artifacts...)
	return resp, nil
}

// Validate checks an existing password against criteria with the standalone
// scorer and adds an entropy estimate.
func (s *GeneratorService) Validate(req model.ValidateRequest) (model.ValidateResponse, error) {
	if err := req.Validate(); err != nil {
		return model.ValidateResponse{}, err
	}
	return model.ValidateResponse{
		ValidationResult: crypto.Validate(req.Password, req.Criteria.Resolve()),
		Estimate:         crypto.EstimateStrength(req.Password, req.Hints...),
	}, nil
}

// Verify checks a credential against a hash produced by GenerateEcommerce.
func (s *GeneratorService) Verify(req model.VerifyRequest) (model.VerifyResponse, error) {
	if err := req.Validate(); err != nil {
		return model.VerifyResponse{}, err
	}
	match, err := crypto.VerifyCredential(req.Password, req.Hash)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidHashFormat) || errors.Is(err, crypto.ErrIncompatibleVersion) {
			var errs model.ValidationErrors
			errs.Add("hash", err.Error())
			return model.VerifyResponse{}, errs
		}
		return model.VerifyResponse{}, err
	}
	return model.VerifyResponse{Match: match}, nil
}

func generateAndScore(cfg crypto.GenerationConfig) (string, crypto.StrengthReport, error) {
	password, err := crypto.Generate(cfg)
	if err != nil {
		return "", crypto.StrengthReport{}, err
	}
	return password, crypto.ScoreGenerated(password, cfg), nil
}

func passwordArtifact(id, variant, batchID string, report crypto.StrengthReport, at time.Time) model.Artifact {
	return model.Artifact{
		ID:            id,
		Kind:          model.KindPassword,
		Variant:       variant,
		BatchID:       batchID,
		StrengthLevel: string(report.Level),
		CreatedAt:     at,
	}
}

// record stores audit records. Failures are logged and never surface to the
// caller.
func (s *GeneratorService) record(ctx context.Context, artifacts ...model.Artifact) {
	recordArtifacts(ctx, s.recorder, artifacts...)
}

func recordArtifacts(ctx context.Context, r Recorder, artifacts ...model.Artifact) {
	if err := r.Record(ctx, artifacts...); err != nil {
		slog.WarnContext(ctx, "recording artifacts failed", "count", len(artifacts), "error", err)
	}
}
