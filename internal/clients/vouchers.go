package clients

import (
	"context"

	domain "github.com/warungkita/api/internal/domain"
)

// ValidateVoucherRequest carries the order context the validator prices
// against. TotalAmount is the draft's subtotal plus shipping plus tax.
type ValidateVoucherRequest struct {
	Code        string `json:"code"`
	Email       string `json:"email"`
	TotalAmount int64  `json:"totalAmount"`
}

type voucherValidation struct {
	Voucher struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Name  string `json:"name"`
		Type  string `json:"type"`
		Value int64  `json:"value"`
	} `json:"voucher"`
	DiscountAmount int64 `json:"discountAmount"`
}

// ValidateVoucher asks the collaborator to validate and price a voucher code.
// Eligibility rules (date range, usage limits, minimum order, discount caps,
// percentage-versus-fixed math) live entirely on the collaborator side; the
// returned discount amount is stored verbatim.
func (c *Client) ValidateVoucher(ctx context.Context, req ValidateVoucherRequest) (domain.Voucher, error) {
	var data voucherValidation
	if err := c.post(ctx, "/vouchers/validate", req, &data); err != nil {
		return domain.Voucher{}, err
	}

	return domain.Voucher{
		ID:             data.Voucher.ID,
		Code:           data.Voucher.Code,
		Name:           data.Voucher.Name,
		Type:           domain.VoucherType(data.Voucher.Type),
		Value:          data.Voucher.Value,
		DiscountAmount: data.DiscountAmount,
	}, nil
}
