package valueobject

import "github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"

type ItemType string

const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

func (t ItemType) IsValid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

func NewItemType(v string) (ItemType, error) {
	t := ItemType(v)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "тип должен быть lost или found")
	}
	return t, nil
}

type ItemStatus string

const (
	ItemStatusOpen     ItemStatus = "open"
	ItemStatusResolved ItemStatus = "resolved"
)

func (s ItemStatus) IsValid() bool {
	return s == ItemStatusOpen || s == ItemStatusResolved
}

func NewItemStatus(v string) (ItemStatus, error) {
	s := ItemStatus(v)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус вещи")
	}
	return s, nil
}

type ClaimStatus string

const (
	ClaimStatusOpen      ClaimStatus = "open"
	ClaimStatusAccepted  ClaimStatus = "accepted"
	ClaimStatusResolving ClaimStatus = "resolving"
	ClaimStatusResolved  ClaimStatus = "resolved"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

// claimTransitions перечисляет все допустимые рёбра жизненного цикла заявки.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusOpen:      {ClaimStatusAccepted, ClaimStatusRejected},
	ClaimStatusAccepted:  {ClaimStatusResolving, ClaimStatusResolved},
	ClaimStatusResolving: {ClaimStatusResolved},
	ClaimStatusResolved:  {},
	ClaimStatusRejected:  {},
}

func (s ClaimStatus) IsValid() bool {
	_, ok := claimTransitions[s]
	return ok
}

func (s ClaimStatus) CanTransitionTo(newStatus ClaimStatus) bool {
	for _, status := range claimTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s ClaimStatus) IsTerminal() bool {
	return s.IsValid() && len(claimTransitions[s]) == 0
}

// ChatWritable сообщает, можно ли писать в чат заявки.
func (s ClaimStatus) ChatWritable() bool {
	return s == ClaimStatusAccepted
}

func NewClaimStatus(v string) (ClaimStatus, error) {
	s := ClaimStatus(v)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}
