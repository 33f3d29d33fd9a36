package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/service"
)

type WalletHandler struct {
	wallets       service.WalletService
	notifications service.NotificationService
}

func NewWalletHandler(wallets service.WalletService, notifications service.NotificationService) *WalletHandler {
	return &WalletHandler{wallets: wallets, notifications: notifications}
}

func (h *WalletHandler) ListWallets(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	wallets, err := h.wallets.ListWallets(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	summaries := make([]walletSummary, len(wallets))
	for i := range wallets {
		summaries[i] = mapWalletSummary(&wallets[i])
	}
	return respond(ctx, map[string]any{"wallets": summaries})
}

func (h *WalletHandler) GetWallet(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "wallet id is required")
	}
	w, err := h.wallets.GetWallet(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return respond(ctx, mapWalletDetail(w))
}

func (h *WalletHandler) GetDebts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID := stringField(req, "wallet_id")
	if walletID == "" {
		return nil, status.Error(codes.InvalidArgument, "wallet_id is required")
	}

	mode := stringField(req, "mode")
	var minimized bool
	switch mode {
	case "", "simplified":
		mode = "simplified"
	case "minimized":
		minimized = true
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown mode %q", mode)
	}

	report, err := h.wallets.GetDebtReport(ctx, walletID, minimized)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return respond(ctx, map[string]any{"mode": mode, "debts": mapDebtLines(report)})
}

func (h *WalletHandler) ListActivities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID := stringField(req, "wallet_id")
	if walletID == "" {
		return nil, status.Error(codes.InvalidArgument, "wallet_id is required")
	}
	if _, err := h.wallets.GetWallet(ctx, walletID); err != nil {
		return nil, toStatus(ctx, err)
	}

	var types []domain.ActivityType
	for _, v := range req.GetFields()["types"].GetListValue().GetValues() {
		if t := strings.ToUpper(strings.TrimSpace(v.GetStringValue())); t != "" {
			types = append(types, domain.ActivityType(t))
		}
	}
	page := int32(req.GetFields()["page"].GetNumberValue())
	pageSize := int32(req.GetFields()["page_size"].GetNumberValue())

	activities, total, err := h.notifications.ListActivities(ctx, walletID, types, page, pageSize)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	if page < 1 {
		page = 1
	}
	return respond(ctx, map[string]any{"activities": activities, "total": total, "page": page})
}

func stringField(s *structpb.Struct, name string) string {
	return strings.TrimSpace(s.GetFields()[name].GetStringValue())
}

func respond(ctx context.Context, v any) (*structpb.Struct, error) {
	s, err := toStruct(v)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to encode gRPC response", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return s, nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInactiveWallet), errors.Is(err, domain.ErrInactiveMember):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		logger.ErrorContext(ctx, "gRPC request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
