package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

// ClaimDetails содержит данные, которые заявитель отправляет вместе с заявкой.
type ClaimDetails struct {
	FullName      string
	Email         string
	PhoneNumber   *string
	Proof         string
	ProofImageURL *string
}

type Claim struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	ItemOwnerID    uuid.UUID
	ClaimantUserID uuid.UUID
	FullName       string
	Email          string
	PhoneNumber    *string
	Proof          string
	ProofImageURL  *string
	Status         valueobject.ClaimStatus
	ChatID         *uuid.UUID
	Version        int
	SubmittedAt    time.Time
	UpdatedAt      time.Time
}

// NewClaim создаёт заявку в статусе open. Вызывающий обязан передать
// актуальное (заблокированное) состояние вещи.
func NewClaim(item *Item, claimantID uuid.UUID, details ClaimDetails) (*Claim, error) {
	if item.IsResolved() {
		return nil, apperror.ErrItemResolved
	}
	if item.IsOwnedBy(claimantID) {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя подать заявку на собственную вещь")
	}

	details.FullName = strings.TrimSpace(details.FullName)
	details.Email = strings.ToLower(strings.TrimSpace(details.Email))
	details.Proof = strings.TrimSpace(details.Proof)
	details.PhoneNumber = trimOptional(details.PhoneNumber)
	details.ProofImageURL = trimOptional(details.ProofImageURL)

	if err := validation.ValidateLength("имя", details.FullName, validation.MinDisplayNameLength, validation.MaxDisplayNameLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(details.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("доказательство", details.Proof, validation.MinProofLength, validation.MaxProofLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePhone(details.PhoneNumber); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExternalLink(details.ProofImageURL); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	now := time.Now()
	return &Claim{
		ID:             uuid.New(),
		ItemID:         item.ID,
		ItemOwnerID:    item.OwnerID,
		ClaimantUserID: claimantID,
		FullName:       details.FullName,
		Email:          details.Email,
		PhoneNumber:    details.PhoneNumber,
		Proof:          details.Proof,
		ProofImageURL:  details.ProofImageURL,
		Status:         valueobject.ClaimStatusOpen,
		Version:        1,
		SubmittedAt:    now,
		UpdatedAt:      now,
	}, nil
}

// Accept открывает чат: его идентификатор совпадает с идентификатором заявки.
func (c *Claim) Accept() error {
	if err := c.transition(valueobject.ClaimStatusAccepted); err != nil {
		return err
	}
	chatID := c.ID
	c.ChatID = &chatID
	return nil
}

func (c *Claim) Reject() error {
	return c.transition(valueobject.ClaimStatusRejected)
}

// MarkResolving фиксирует передачу вещи партнёром до подтверждения заявителем.
func (c *Claim) MarkResolving() error {
	return c.transition(valueobject.ClaimStatusResolving)
}

func (c *Claim) Resolve() error {
	return c.transition(valueobject.ClaimStatusResolved)
}

// CloseAsSibling закрывает соседнюю заявку, когда вещь возвращена по другой.
// Открытые заявки отклоняются, принятые считаются завершёнными.
func (c *Claim) CloseAsSibling() (bool, error) {
	switch c.Status {
	case valueobject.ClaimStatusOpen:
		return true, c.transition(valueobject.ClaimStatusRejected)
	case valueobject.ClaimStatusAccepted, valueobject.ClaimStatusResolving:
		return true, c.transition(valueobject.ClaimStatusResolved)
	}
	return false, nil
}

func (c *Claim) transition(to valueobject.ClaimStatus) error {
	if !c.Status.CanTransitionTo(to) {
		return apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("нельзя перевести заявку из %s в %s", c.Status, to))
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Claim) IsParticipant(userID uuid.UUID) bool {
	return c.ClaimantUserID == userID || c.ItemOwnerID == userID
}

func (c *Claim) IsClaimant(userID uuid.UUID) bool {
	return c.ClaimantUserID == userID
}

func (c *Claim) IsItemOwner(userID uuid.UUID) bool {
	return c.ItemOwnerID == userID
}

// Counterparty возвращает второго участника чата.
func (c *Claim) Counterparty(userID uuid.UUID) uuid.UUID {
	if c.ClaimantUserID == userID {
		return c.ItemOwnerID
	}
	return c.ClaimantUserID
}

func (c *Claim) CanChat() bool {
	return c.Status.ChatWritable()
}
