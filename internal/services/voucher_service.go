package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/warungkita/api/internal/clients"
	domain "github.com/warungkita/api/internal/domain"
)

var (
	errVoucherAPIRequired      = errors.New("voucher service: commerce api is required")
	errVoucherSessionsRequired = errors.New("voucher service: session store is required")
)

// ErrVoucherEmptyCode indicates an empty or whitespace-only code; no
// validation call is made.
var ErrVoucherEmptyCode = errors.New("voucher service: empty code")

// ErrVoucherUnavailable indicates the validation collaborator could not be reached.
var ErrVoucherUnavailable = errors.New("voucher service: unavailable")

// ErrVoucherSuperseded indicates a newer validation request for the same
// session finished first; the stale result was discarded.
var ErrVoucherSuperseded = errors.New("voucher service: superseded by a newer request")

// ErrVoucherInvalidInput indicates the caller supplied invalid input.
var ErrVoucherInvalidInput = errors.New("voucher service: invalid input")

// VoucherRejectedError carries the collaborator's rejection message verbatim
// (unknown code, expired, usage limit, below minimum order).
type VoucherRejectedError struct {
	Message string
}

func (e *VoucherRejectedError) Error() string {
	return fmt.Sprintf("voucher rejected: %s", e.Message)
}

// VoucherServiceDeps wires the validation collaborator and session persistence.
type VoucherServiceDeps struct {
	API      voucherValidator
	Sessions SessionStore
	Logger   func(context.Context, string, map[string]any)
}

type voucherValidator interface {
	ValidateVoucher(ctx context.Context, req clients.ValidateVoucherRequest) (domain.Voucher, error)
}

type voucherService struct {
	api      voucherValidator
	sessions SessionStore
	logger   func(context.Context, string, map[string]any)

	mu  sync.Mutex
	seq map[string]uint64
}

// NewVoucherService constructs a VoucherService enforcing dependency validation.
func NewVoucherService(deps VoucherServiceDeps) (VoucherService, error) {
	if deps.API == nil {
		return nil, errVoucherAPIRequired
	}
	if deps.Sessions == nil {
		return nil, errVoucherSessionsRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &voucherService{
		api:      deps.API,
		sessions: deps.Sessions,
		logger:   logger,
		seq:      make(map[string]uint64),
	}, nil
}

// ApplyVoucher validates the code against the order context and stores the
// priced voucher on the session. A session holds at most one voucher, so a
// successful apply replaces any previous one.
//
// Each session carries a monotonically increasing request sequence. A request
// that is overtaken by a newer one for the same session discards its result
// instead of overwriting the newer state.
func (s *voucherService) ApplyVoucher(ctx context.Context, cmd ApplyVoucherCommand) (Voucher, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return Voucher{}, ErrVoucherInvalidInput
	}

	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if code == "" {
		return Voucher{}, ErrVoucherEmptyCode
	}

	seq := s.nextSeq(sessionID)

	voucher, err := s.api.ValidateVoucher(ctx, clients.ValidateVoucherRequest{
		Code:        code,
		Email:       strings.TrimSpace(cmd.Email),
		TotalAmount: cmd.TotalAmount,
	})
	if err != nil {
		if message, ok := clients.RejectionMessage(err); ok {
			return Voucher{}, &VoucherRejectedError{Message: message}
		}
		s.logger(ctx, "voucher.validation_failed", map[string]any{
			"code":  code,
			"error": err.Error(),
		})
		return Voucher{}, ErrVoucherUnavailable
	}

	if !s.isLatestSeq(sessionID, seq) {
		return Voucher{}, ErrVoucherSuperseded
	}

	if err := s.sessions.SaveVoucher(ctx, sessionID, voucher); err != nil {
		s.logger(ctx, "voucher.save_failed", map[string]any{
			"code":  code,
			"error": err.Error(),
		})
		return Voucher{}, ErrVoucherUnavailable
	}

	return voucher, nil
}

// RemoveVoucher clears the applied voucher unconditionally.
func (s *voucherService) RemoveVoucher(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrVoucherInvalidInput
	}
	if err := s.sessions.DeleteVoucher(ctx, sessionID); err != nil {
		s.logger(ctx, "voucher.remove_failed", map[string]any{
			"error": err.Error(),
		})
		return ErrVoucherUnavailable
	}
	return nil
}

func (s *voucherService) nextSeq(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[sessionID]++
	return s.seq[sessionID]
}

func (s *voucherService) isLatestSeq(sessionID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[sessionID] == seq
}
