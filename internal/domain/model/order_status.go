package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// 注文ステータス。値は常に1つだけ（OR合成した値は保存しない）。
// 数値コード（2の累乗）は保存・JSONの境界でだけ使う。
type OrderStatus uint8

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPendingPayment
	OrderStatusPaid
	OrderStatusProcessing
	OrderStatusShipped
	OrderStatusDelivered
	OrderStatusCancelled
	OrderStatusRefunded
	OrderStatusPrescriptionPending
	OrderStatusPrescriptionApproved
	OrderStatusPrescriptionRejected
)

// ステータスの分類
type StatusCategory string

const (
	CategoryPreFulfillment   StatusCategory = "pre-fulfillment"
	CategoryFulfillment      StatusCategory = "fulfillment"
	CategoryTerminalSuccess  StatusCategory = "terminal-success"
	CategoryTerminalFailure  StatusCategory = "terminal-failure"
	CategoryPrescriptionGate StatusCategory = "prescription-gate"
)

type statusDef struct {
	code     uint16
	label    string
	category StatusCategory
	badge    string
}

var statusDefs = map[OrderStatus]statusDef{
	OrderStatusPendingPayment:       {1, "Pending payment", CategoryPreFulfillment, "warning"},
	OrderStatusPaid:                 {2, "Paid", CategoryPreFulfillment, "info"},
	OrderStatusProcessing:           {4, "Processing", CategoryFulfillment, "primary"},
	OrderStatusShipped:              {8, "Shipped", CategoryFulfillment, "primary"},
	OrderStatusDelivered:            {16, "Delivered", CategoryTerminalSuccess, "success"},
	OrderStatusCancelled:            {32, "Cancelled", CategoryTerminalFailure, "secondary"},
	OrderStatusRefunded:             {64, "Refunded", CategoryTerminalFailure, "dark"},
	OrderStatusPrescriptionPending:  {128, "Prescription pending review", CategoryPrescriptionGate, "warning"},
	OrderStatusPrescriptionApproved: {256, "Prescription approved", CategoryPrescriptionGate, "info"},
	OrderStatusPrescriptionRejected: {512, "Prescription rejected", CategoryTerminalFailure, "danger"},
}

// コード→ステータスの逆引き
var statusByCode = func() map[uint16]OrderStatus {
	m := make(map[uint16]OrderStatus, len(statusDefs))
	for s, d := range statusDefs {
		m[d.code] = s
	}
	return m
}()

// 全ステータス（コード昇順）
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPendingPayment,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusRefunded,
		OrderStatusPrescriptionPending,
		OrderStatusPrescriptionApproved,
		OrderStatusPrescriptionRejected,
	}
}

// UnknownStatusCodeError は未定義のコード
type UnknownStatusCodeError struct {
	Code int64
}

func (e *UnknownStatusCodeError) Error() string {
	return fmt.Sprintf("unknown order status code %d", e.Code)
}

// 数値コードからステータスへ。合成値や未定義値はエラー。
func ParseStatusCode(code int64) (OrderStatus, error) {
	if code <= 0 || code > 0xFFFF {
		return OrderStatusUnknown, &UnknownStatusCodeError{Code: code}
	}
	s, ok := statusByCode[uint16(code)]
	if !ok {
		return OrderStatusUnknown, &UnknownStatusCodeError{Code: code}
	}
	return s, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := statusDefs[s]
	return ok
}

func (s OrderStatus) Code() uint16 { return statusDefs[s].code }
func (s OrderStatus) Label() string { return statusDefs[s].label }
func (s OrderStatus) Badge() string { return statusDefs[s].badge }
func (s OrderStatus) Category() StatusCategory { return statusDefs[s].category }

func (s OrderStatus) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return s.Label()
}

// 終端ステータス（これ以上遷移しない）
func (s OrderStatus) IsTerminal() bool {
	switch s.Category() {
	case CategoryTerminalSuccess, CategoryTerminalFailure:
		return true
	}
	return false
}

// 在庫を引き当てる（出荷可能になる）ステータス
func (s OrderStatus) IsFulfillmentEligible() bool {
	return s == OrderStatusPaid || s == OrderStatusPrescriptionApproved
}

// 在庫を戻すステータス
func (s OrderStatus) ReleasesStock() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CategoryMask はレポート用のビットマスク（分類内の全コードのOR）。
func CategoryMask(categories ...StatusCategory) uint16 {
	var mask uint16
	for s, d := range statusDefs {
		for _, c := range categories {
			if d.category == c {
				mask |= s.Code()
			}
		}
	}
	return mask
}

// マスクに含まれるステータス
func StatusesInMask(mask uint16) []OrderStatus {
	out := make([]OrderStatus, 0)
	for _, s := range AllOrderStatuses() {
		if mask&s.Code() != 0 {
			out = append(out, s)
		}
	}
	return out
}

// DB保存: 数値コード
func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return int64(s.Code()), nil
}

// DB読込: 数値コード→ステータス
func (s *OrderStatus) Scan(src any) error {
	var code int64
	switch v := src.(type) {
	case int64:
		code = v
	case int32:
		code = int64(v)
	case int:
		code = int64(v)
	case []byte:
		if _, err := fmt.Sscan(string(v), &code); err != nil {
			return err
		}
	case string:
		if _, err := fmt.Sscan(v, &code); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", src)
	}
	parsed, err := ParseStatusCode(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return json.Marshal(s.Code())
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var code int64
	if err := json.Unmarshal(b, &code); err != nil {
		return err
	}
	parsed, err := ParseStatusCode(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
