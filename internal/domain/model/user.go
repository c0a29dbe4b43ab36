package model

type Role string

const (
	RoleCustomer   Role = "customer"
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePharmacist, RoleAdmin:
		return true
	}
	return false
}

// 認証済みの操作者。ロールは認証境界から渡されたものだけを使う。
type Principal struct {
	UserID int64
	Role   Role
}
