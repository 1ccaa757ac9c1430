package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
)

// DefaultApprovalThreshold applies to Classify calls that carry a probability
// but no threshold.
const DefaultApprovalThreshold = 0.5

// Use cases the handler delegates to.
type (
	CustomerScorer interface {
		Execute(ctx context.Context, req dto.ScoreCustomerRequest) (dto.ScoreResponse, error)
	}
	CustomerEditor interface {
		Execute(ctx context.Context, req dto.EditCustomerRequest) (dto.EditCustomerResponse, error)
	}
	HistoryReader interface {
		Transitions(ctx context.Context, req dto.HistoryRequest) ([]dto.TransitionResponse, error)
		Edits(ctx context.Context, req dto.HistoryRequest) ([]dto.FieldEditResponse, error)
	}
	ArtifactManager interface {
		Execute(ctx context.Context) (dto.ArtifactResponse, error)
		Describe(ctx context.Context) (dto.ArtifactResponse, error)
	}
	Reconciler interface {
		Execute(ctx context.Context, req dto.ReconcileRequest) (dto.ReconcileResponse, error)
	}
)

var (
	_ CustomerScorer  = (*usecase.ScoreCustomer)(nil)
	_ CustomerEditor  = (*usecase.EditCustomer)(nil)
	_ HistoryReader   = (*usecase.GetHistory)(nil)
	_ ArtifactManager = (*usecase.ReloadArtifact)(nil)
	_ Reconciler      = (*usecase.ReconcileCategories)(nil)
)

// Compile-time assertion that RiskServiceHandler implements RiskServiceServer.
var _ RiskServiceServer = (*RiskServiceHandler)(nil)

// RiskServiceHandler implements the gRPC RiskServiceServer interface.
type RiskServiceHandler struct {
	UnimplementedRiskServiceServer
	score     CustomerScorer
	edit      CustomerEditor
	history   HistoryReader
	artifacts ArtifactManager
	reconcile Reconciler
	logger    *slog.Logger
}

// NewRiskServiceHandler creates a new gRPC handler.
func NewRiskServiceHandler(
	score CustomerScorer,
	edit CustomerEditor,
	history HistoryReader,
	artifacts ArtifactManager,
	reconcile Reconciler,
	logger *slog.Logger,
) *RiskServiceHandler {
	return &RiskServiceHandler{
		score:     score,
		edit:      edit,
		history:   history,
		artifacts: artifacts,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Proto-aligned request/response message types.

// ClassifyRequest represents the proto ClassifyRequest message. DaysOverdue
// is free text; anything unparseable counts as zero days.
type ClassifyRequest struct {
	CreditType     string   `json:"credit_type"`
	DaysOverdue    string   `json:"days_overdue"`
	RawProbability *float64 `json:"raw_probability,omitempty"`
	Threshold      *float64 `json:"threshold,omitempty"`
}

// ClassifyResponse represents the proto ClassifyResponse message.
type ClassifyResponse struct {
	FinalProbability *float64 `json:"final_probability,omitempty"`
	Category         string   `json:"category"`
	CategoryStorage  string   `json:"category_storage"`
	Level            string   `json:"level"`
	CreditFamily     string   `json:"credit_family"`
	Disposition      string   `json:"disposition,omitempty"`
	DaysOverdue      int32    `json:"days_overdue"`
	Floor            float64  `json:"floor"`
	IsHighRisk       bool     `json:"is_high_risk"`
}

// ScoreCustomerRequest represents the proto ScoreCustomerRequest message.
type ScoreCustomerRequest struct {
	CustomerKey string `json:"customer_key"`
	Actor       string `json:"actor"`
}

// ScoreMsg represents the proto Score message.
type ScoreMsg struct {
	CustomerKey       string                 `json:"customer_key"`
	Category          string                 `json:"category"`
	Level             string                 `json:"level"`
	Disposition       string                 `json:"disposition"`
	TargetDefinition  string                 `json:"target_definition"`
	ArtifactChecksum  string                 `json:"artifact_checksum"`
	ContrastRating    string                 `json:"contrast_rating,omitempty"`
	ScoredAt          *timestamppb.Timestamp `json:"scored_at"`
	MissingFeatures   []string               `json:"missing_features,omitempty"`
	RawProbability    float64                `json:"raw_probability"`
	FinalProbability  float64                `json:"final_probability"`
	Threshold         float64                `json:"threshold"`
	RawPrediction     bool                   `json:"raw_prediction"`
	FinalPrediction   bool                   `json:"final_prediction"`
	IsHighRisk        bool                   `json:"is_high_risk"`
	TransitionWritten bool                   `json:"transition_written"`
	EditWritten       bool                   `json:"edit_written"`
}

// ScoreCustomerResponse represents the proto ScoreCustomerResponse message.
type ScoreCustomerResponse struct {
	Score *ScoreMsg `json:"score"`
}

// FeaturePatchMsg represents the proto FeaturePatch message. Monetary
// amounts are decimal strings; unset fields are left unchanged.
type FeaturePatchMsg struct {
	TotalAmount        *string  `json:"total_amount,omitempty"`
	TotalBalance       *string  `json:"total_balance,omitempty"`
	TechnicalEquity    *string  `json:"technical_equity,omitempty"`
	Operations         *int32   `json:"n_operations,omitempty"`
	ActiveOperations   *int32   `json:"n_active,omitempty"`
	AvgTerm            *float64 `json:"avg_term,omitempty"`
	AvgRate            *float64 `json:"avg_rate,omitempty"`
	MaxTenureDays      *int32   `json:"max_tenure_days,omitempty"`
	DaysToLastMaturity *int32   `json:"days_to_last_maturity,omitempty"`
	DaysOverdue        *int32   `json:"max_days_overdue,omitempty"`
	Office             *string  `json:"office,omitempty"`
	CreditType         *string  `json:"credit_type,omitempty"`
	Guarantee          *string  `json:"guarantee,omitempty"`
	Sex                *string  `json:"sex,omitempty"`
}

// EditCustomerRequest represents the proto EditCustomerRequest message.
type EditCustomerRequest struct {
	Patch       *FeaturePatchMsg `json:"patch"`
	CustomerKey string           `json:"customer_key"`
	Actor       string           `json:"actor"`
	Notes       string           `json:"notes,omitempty"`
}

// EditCustomerResponse represents the proto EditCustomerResponse message.
type EditCustomerResponse struct {
	Score         *ScoreMsg `json:"score,omitempty"`
	CustomerKey   string    `json:"customer_key"`
	Category      string    `json:"category"`
	Level         string    `json:"level"`
	ScoringError  string    `json:"scoring_error,omitempty"`
	ChangedFields []string  `json:"changed_fields"`
	IsHighRisk    bool      `json:"is_high_risk"`
}

// ListTransitionsRequest represents the proto ListTransitionsRequest message.
type ListTransitionsRequest struct {
	CustomerKey string `json:"customer_key"`
	Limit       int32  `json:"limit"`
	Offset      int32  `json:"offset"`
}

// TransitionMsg represents the proto CategoryTransition message.
// The raw fields are unset when no model score existed for the customer.
type TransitionMsg struct {
	CreatedAt        *timestamppb.Timestamp `json:"created_at"`
	RawProbability   *float64               `json:"raw_probability,omitempty"`
	RawPrediction    *bool                  `json:"raw_prediction,omitempty"`
	ID               string                 `json:"id"`
	CustomerKey      string                 `json:"customer_key"`
	CategoryBefore   string                 `json:"category_before,omitempty"`
	CategoryAfter    string                 `json:"category_after"`
	Level            string                 `json:"level"`
	CreditType       string                 `json:"credit_type"`
	CreatedBy        string                 `json:"created_by"`
	FinalProbability float64                `json:"final_probability"`
	DaysOverdue      int32                  `json:"days_overdue"`
}

// ListTransitionsResponse represents the proto ListTransitionsResponse message.
type ListTransitionsResponse struct {
	Transitions []*TransitionMsg `json:"transitions"`
}

// ListFieldEditsRequest represents the proto ListFieldEditsRequest message.
type ListFieldEditsRequest struct {
	CustomerKey string `json:"customer_key"`
	Limit       int32  `json:"limit"`
	Offset      int32  `json:"offset"`
}

// FieldEditMsg represents the proto FieldEdit message.
type FieldEditMsg struct {
	Before      map[string]any               `json:"before"`
	After       map[string]any               `json:"after"`
	Diff        map[string]model.FieldChange `json:"diff"`
	ChangedAt   *timestamppb.Timestamp       `json:"changed_at"`
	ID          string                       `json:"id"`
	CustomerKey string                       `json:"customer_key"`
	Action      string                       `json:"action"`
	ChangedBy   string                       `json:"changed_by"`
	Notes       string                       `json:"notes,omitempty"`
}

// ListFieldEditsResponse represents the proto ListFieldEditsResponse message.
type ListFieldEditsResponse struct {
	Edits []*FieldEditMsg `json:"edits"`
}

// GetArtifactRequest represents the proto GetArtifactRequest message.
type GetArtifactRequest struct{}

// ReloadArtifactRequest represents the proto ReloadArtifactRequest message.
type ReloadArtifactRequest struct{}

// ArtifactResponse represents the proto Artifact message.
type ArtifactResponse struct {
	LoadedAt         *timestamppb.Timestamp `json:"loaded_at"`
	Checksum         string                 `json:"checksum"`
	TargetDefinition string                 `json:"target_definition"`
	FeatureColumns   []string               `json:"feature_columns"`
	Threshold        float64                `json:"threshold"`
}

// ReconcileRequest represents the proto ReconcileRequest message.
type ReconcileRequest struct {
	Actor     string `json:"actor"`
	BatchSize int32  `json:"batch_size"`
	Workers   int32  `json:"workers"`
}

// ReconcileResponse represents the proto ReconcileResponse message.
type ReconcileResponse struct {
	Processed  int64 `json:"processed"`
	Changed    int64 `json:"changed"`
	Failed     int64 `json:"failed"`
	DurationMs int64 `json:"duration_ms"`
}

// Classify runs the delinquency table and, when a probability is supplied,
// the floor and disposition. It touches no state.
func (h *RiskServiceHandler) Classify(_ context.Context, req *ClassifyRequest) (*ClassifyResponse, error) {
	return EvaluateClassification(req)
}

// EvaluateClassification answers a ClassifyRequest without a server.
func EvaluateClassification(req *ClassifyRequest) (*ClassifyResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var days *int
	if strings.TrimSpace(req.DaysOverdue) != "" {
		d := service.ParseDaysOverdue(req.DaysOverdue)
		days = &d
	}
	class := service.Classify(req.CreditType, days)
	display := class.Category.Display()

	resp := &ClassifyResponse{
		Category:        display,
		CategoryStorage: class.Category.Storage(),
		Level:           class.Level.String(),
		CreditFamily:    class.Family.String(),
		Floor:           service.Floor(display),
		IsHighRisk:      class.Category.IsHighRisk(),
	}
	if days != nil {
		resp.DaysOverdue = int32(*days)
	}

	if req.RawProbability != nil {
		raw := *req.RawProbability
		if raw < 0 || raw > 1 {
			return nil, status.Errorf(codes.InvalidArgument, "raw_probability must be within [0, 1], got %v", raw)
		}
		threshold := DefaultApprovalThreshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		if threshold < 0 || threshold > 1 {
			return nil, status.Errorf(codes.InvalidArgument, "threshold must be within [0, 1], got %v", threshold)
		}
		final := service.AdjustProbability(raw, display)
		resp.FinalProbability = &final
		resp.Disposition = service.Decide(display, final, threshold).String()
	}

	return resp, nil
}

// ScoreCustomer scores a stored customer and persists the outcome.
func (h *RiskServiceHandler) ScoreCustomer(ctx context.Context, req *ScoreCustomerRequest) (*ScoreCustomerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	h.logger.Info("scoring customer",
		slog.String("customer_key", req.CustomerKey),
		slog.String("actor", req.Actor),
	)

	result, err := h.score.Execute(ctx, dto.ScoreCustomerRequest{
		CustomerKey: req.CustomerKey,
		Actor:       req.Actor,
	})
	if err != nil {
		return nil, h.toStatus("score customer", err, slog.String("customer_key", req.CustomerKey))
	}

	return &ScoreCustomerResponse{Score: toScoreMsg(result)}, nil
}

// EditCustomer applies a feature patch, reclassifies and audits the change.
func (h *RiskServiceHandler) EditCustomer(ctx context.Context, req *EditCustomerRequest) (*EditCustomerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Patch == nil {
		return nil, status.Error(codes.InvalidArgument, "patch is required")
	}

	patch, err := toFeaturePatch(req.Patch)
	if err != nil {
		return nil, err
	}

	result, err := h.edit.Execute(ctx, dto.EditCustomerRequest{
		CustomerKey: req.CustomerKey,
		Patch:       patch,
		Actor:       req.Actor,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, h.toStatus("edit customer", err, slog.String("customer_key", req.CustomerKey))
	}

	resp := &EditCustomerResponse{
		CustomerKey:   result.CustomerKey,
		Category:      result.Category,
		Level:         result.Level,
		IsHighRisk:    result.IsHighRisk,
		ChangedFields: result.ChangedFields,
		ScoringError:  result.ScoringError,
	}
	if result.Score != nil {
		resp.Score = toScoreMsg(*result.Score)
	}
	return resp, nil
}

// ListTransitions returns the customer's category transitions, newest first.
func (h *RiskServiceHandler) ListTransitions(ctx context.Context, req *ListTransitionsRequest) (*ListTransitionsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rows, err := h.history.Transitions(ctx, dto.HistoryRequest{
		CustomerKey: req.CustomerKey,
		Limit:       int(req.Limit),
		Offset:      int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus("list transitions", err, slog.String("customer_key", req.CustomerKey))
	}

	out := make([]*TransitionMsg, 0, len(rows))
	for _, r := range rows {
		out = append(out, &TransitionMsg{
			ID:               r.ID,
			CustomerKey:      r.CustomerKey,
			CategoryBefore:   r.CategoryBefore,
			CategoryAfter:    r.CategoryAfter,
			Level:            r.Level,
			CreditType:       r.CreditType,
			CreatedBy:        r.CreatedBy,
			CreatedAt:        toTimestamp(r.CreatedAt),
			RawProbability:   r.RawProbability,
			FinalProbability: r.FinalProbability,
			DaysOverdue:      int32(r.DaysOverdue),
			RawPrediction:    r.RawPrediction,
		})
	}
	return &ListTransitionsResponse{Transitions: out}, nil
}

// ListFieldEdits returns the customer's field edits, newest first.
func (h *RiskServiceHandler) ListFieldEdits(ctx context.Context, req *ListFieldEditsRequest) (*ListFieldEditsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rows, err := h.history.Edits(ctx, dto.HistoryRequest{
		CustomerKey: req.CustomerKey,
		Limit:       int(req.Limit),
		Offset:      int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus("list field edits", err, slog.String("customer_key", req.CustomerKey))
	}

	out := make([]*FieldEditMsg, 0, len(rows))
	for _, r := range rows {
		out = append(out, &FieldEditMsg{
			ID:          r.ID,
			CustomerKey: r.CustomerKey,
			Action:      r.Action,
			Before:      r.Before,
			After:       r.After,
			Diff:        r.Diff,
			ChangedBy:   r.ChangedBy,
			ChangedAt:   toTimestamp(r.ChangedAt),
			Notes:       r.Notes,
		})
	}
	return &ListFieldEditsResponse{Edits: out}, nil
}

// GetArtifact describes the active classifier artifact, loading it if needed.
func (h *RiskServiceHandler) GetArtifact(ctx context.Context, _ *GetArtifactRequest) (*ArtifactResponse, error) {
	a, err := h.artifacts.Describe(ctx)
	if err != nil {
		return nil, h.toStatus("describe artifact", err)
	}
	return toArtifactMsg(a), nil
}

// ReloadArtifact re-reads the artifact from its source. On failure the
// previous artifact stays active.
func (h *RiskServiceHandler) ReloadArtifact(ctx context.Context, _ *ReloadArtifactRequest) (*ArtifactResponse, error) {
	a, err := h.artifacts.Execute(ctx)
	if err != nil {
		return nil, h.toStatus("reload artifact", err)
	}
	return toArtifactMsg(a), nil
}

// Reconcile recomputes the category of every stored customer.
func (h *RiskServiceHandler) Reconcile(ctx context.Context, req *ReconcileRequest) (*ReconcileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	h.logger.Info("reconciling categories", slog.String("actor", req.Actor))

	result, err := h.reconcile.Execute(ctx, dto.ReconcileRequest{
		Actor:     req.Actor,
		BatchSize: int(req.BatchSize),
		Workers:   int(req.Workers),
	})
	if err != nil {
		return nil, h.toStatus("reconcile categories", err)
	}

	return &ReconcileResponse{
		Processed:  int64(result.Processed),
		Changed:    int64(result.Changed),
		Failed:     int64(result.Failed),
		DurationMs: result.Duration.Milliseconds(),
	}, nil
}

// toStatus maps application errors to gRPC codes and logs server-side
// failures. Internal errors are not echoed to the caller.
func (h *RiskServiceHandler) toStatus(op string, err error, attrs ...any) error {
	code := codeFor(err)
	switch code {
	case codes.Internal, codes.Aborted, codes.Unavailable:
		h.logger.Error("failed to "+op, append(attrs, slog.String("error", err.Error()))...)
	}
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, port.ErrCustomerNotFound):
		return codes.NotFound
	case errors.Is(err, ml.ErrArtifactUnavailable):
		return codes.Unavailable
	case errors.Is(err, usecase.ErrPersistence):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

func toFeaturePatch(m *FeaturePatchMsg) (model.FeaturePatch, error) {
	var p model.FeaturePatch
	var err error
	if p.TotalAmount, err = parseAmount("total_amount", m.TotalAmount); err != nil {
		return p, err
	}
	if p.TotalBalance, err = parseAmount("total_balance", m.TotalBalance); err != nil {
		return p, err
	}
	if p.TechnicalEquity, err = parseAmount("technical_equity", m.TechnicalEquity); err != nil {
		return p, err
	}
	p.Operations = intPtr(m.Operations)
	p.ActiveOperations = intPtr(m.ActiveOperations)
	p.AvgTermMonths = m.AvgTerm
	p.AvgRate = m.AvgRate
	p.MaxTenureDays = intPtr(m.MaxTenureDays)
	p.DaysToLastMaturity = intPtr(m.DaysToLastMaturity)
	p.DaysOverdue = intPtr(m.DaysOverdue)
	p.Office = m.Office
	p.CreditType = m.CreditType
	p.GuaranteeType = m.Guarantee
	p.Sex = m.Sex
	return p, nil
}

func parseAmount(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return &d, nil
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func toScoreMsg(r dto.ScoreResponse) *ScoreMsg {
	return &ScoreMsg{
		CustomerKey:       r.CustomerKey,
		Category:          r.Category,
		Level:             r.Level,
		Disposition:       r.Disposition,
		TargetDefinition:  r.TargetDefinition,
		ArtifactChecksum:  r.ArtifactChecksum,
		ContrastRating:    r.ContrastRating,
		ScoredAt:          toTimestamp(r.ScoredAt),
		MissingFeatures:   r.MissingFeatures,
		RawProbability:    r.RawProbability,
		FinalProbability:  r.FinalProbability,
		Threshold:         r.Threshold,
		RawPrediction:     r.RawPrediction,
		FinalPrediction:   r.FinalPrediction,
		IsHighRisk:        r.IsHighRisk,
		TransitionWritten: r.TransitionWritten,
		EditWritten:       r.EditWritten,
	}
}

func toArtifactMsg(a dto.ArtifactResponse) *ArtifactResponse {
	return &ArtifactResponse{
		Checksum:         a.Checksum,
		TargetDefinition: a.TargetDefinition,
		LoadedAt:         toTimestamp(a.LoadedAt),
		FeatureColumns:   a.FeatureColumns,
		Threshold:        a.Threshold,
	}
}

func toTimestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}
