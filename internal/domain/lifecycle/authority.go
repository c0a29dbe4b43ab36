package lifecycle

import (
	"fmt"
	"strings"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

// Actor は遷移を要求した操作者。Owner は注文の持ち主かどうか。
type Actor struct {
	Role  model.Role
	Owner bool
}

// 遷移を許可される操作者の集合（ビット）
type who uint8

const (
	whoOwner who = 1 << iota
	whoPharmacist
	whoAdmin
)

const (
	whoStaff    = whoPharmacist | whoAdmin
	whoPayer    = whoStaff
	whoReviewer = whoPharmacist | whoAdmin
)

func (a Actor) bits() who {
	var w who
	switch a.Role {
	case model.RolePharmacist:
		w |= whoPharmacist
	case model.RoleAdmin:
		w |= whoAdmin
	}
	if a.Owner && a.Role == model.RoleCustomer {
		w |= whoOwner
	}
	return w
}

type rule struct {
	allowed     who
	requireNote bool
}

// from → to → 許可ルール。表に無い組は権限に関係なく不正な遷移。
type table map[model.OrderStatus]map[model.OrderStatus]rule

// 処方箋承認済みは、以降の遷移で支払済みと同じルールを使う
const approvedSharesPaidRules = true

var transitions = buildTransitions()

func buildTransitions() table {
	paidRow := map[model.OrderStatus]rule{
		model.OrderStatusProcessing: {allowed: whoStaff},
		model.OrderStatusRefunded:   {allowed: whoStaff},
		model.OrderStatusCancelled:  {allowed: whoStaff},
	}

	t := table{
		model.OrderStatusPendingPayment: {
			model.OrderStatusPaid:      {allowed: whoPayer},
			model.OrderStatusCancelled: {allowed: whoOwner | whoStaff},
		},
		model.OrderStatusPaid: paidRow,
		model.OrderStatusProcessing: {
			model.OrderStatusShipped:   {allowed: whoStaff},
			model.OrderStatusCancelled: {allowed: whoStaff},
		},
		//出荷後は配達完了のみ
		model.OrderStatusShipped: {
			model.OrderStatusDelivered: {allowed: whoStaff},
		},
		model.OrderStatusPrescriptionPending: {
			model.OrderStatusPrescriptionApproved: {allowed: whoReviewer},
			model.OrderStatusPrescriptionRejected: {allowed: whoReviewer, requireNote: true},
		},
	}

	if approvedSharesPaidRules {
		approvedRow := make(map[model.OrderStatus]rule, len(paidRow))
		for to, r := range paidRow {
			approvedRow[to] = r
		}
		t[model.OrderStatusPrescriptionApproved] = approvedRow
	}
	return t
}

// EquivalentForRules は遷移ルールを引くときの代表ステータス。
func EquivalentForRules(s model.OrderStatus) model.OrderStatus {
	if approvedSharesPaidRules && s == model.OrderStatusPrescriptionApproved {
		return model.OrderStatusPaid
	}
	return s
}

// CanTransition は current → requested が actor に許されるかを判定する。
// 同じステータスへの遷移は副作用なしの成功（nil）。
func CanTransition(current, requested model.OrderStatus, actor Actor, note string) error {
	if !requested.Valid() {
		return Validation("unknown requested status")
	}
	if !current.Valid() {
		return Validation("order has an unknown status")
	}
	if current == requested {
		return nil
	}
	if current.IsTerminal() {
		return &Error{
			Kind:    KindTerminalStateViolation,
			Message: fmt.Sprintf("order is %s; no further transitions are permitted", strings.ToLower(current.Label())),
		}
	}

	r, ok := transitions[current][requested]
	if !ok {
		return &Error{
			Kind:    KindInvalidTransition,
			Message: fmt.Sprintf("cannot move an order from %s to %s", strings.ToLower(current.Label()), strings.ToLower(requested.Label())),
		}
	}
	if actor.bits()&r.allowed == 0 {
		return &Error{
			Kind:    KindUnauthorizedTransition,
			Message: fmt.Sprintf("role %q may not move an order from %s to %s", actor.Role, strings.ToLower(current.Label()), strings.ToLower(requested.Label())),
		}
	}
	if r.requireNote && strings.TrimSpace(note) == "" {
		return Validation("a rejection note is required")
	}
	return nil
}

// NextStatuses は actor が current から選べる遷移先。
func NextStatuses(current model.OrderStatus, actor Actor) []model.OrderStatus {
	row := transitions[current]
	out := make([]model.OrderStatus, 0, len(row))
	for _, s := range model.AllOrderStatuses() {
		if r, ok := row[s]; ok && actor.bits()&r.allowed != 0 {
			out = append(out, s)
		}
	}
	return out
}

// RequiresNote は current → requested にメモが必須か。
func RequiresNote(current, requested model.OrderStatus) bool {
	return transitions[current][requested].requireNote
}
