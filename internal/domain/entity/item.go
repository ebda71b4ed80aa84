package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

// ItemDetails содержит редактируемые поля объявления.
type ItemDetails struct {
	Type                valueobject.ItemType
	Name                string
	Category            string
	Description         string
	DistinguishingMarks *string
	Location            string
	Date                time.Time
	ImageURL            *string
	Contact             string
}

type Item struct {
	ID                  uuid.UUID
	Type                valueobject.ItemType
	Name                string
	Category            string
	Description         string
	DistinguishingMarks *string
	Location            string
	Date                time.Time
	ImageURL            *string
	Contact             string
	OwnerID             uuid.UUID
	Status              valueobject.ItemStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ResolvedAt          *time.Time
}

func NewItem(ownerID uuid.UUID, details ItemDetails) (*Item, error) {
	if err := validateItemDetails(&details); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Item{
		ID:                  uuid.New(),
		Type:                details.Type,
		Name:                details.Name,
		Category:            details.Category,
		Description:         details.Description,
		DistinguishingMarks: details.DistinguishingMarks,
		Location:            details.Location,
		Date:                details.Date,
		ImageURL:            details.ImageURL,
		Contact:             details.Contact,
		OwnerID:             ownerID,
		Status:              valueobject.ItemStatusOpen,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Update меняет описание вещи. Тип объявления после публикации не меняется.
func (i *Item) Update(details ItemDetails) error {
	if i.IsResolved() {
		return apperror.ErrItemResolved
	}
	details.Type = i.Type
	if err := validateItemDetails(&details); err != nil {
		return err
	}

	i.Name = details.Name
	i.Category = details.Category
	i.Description = details.Description
	i.DistinguishingMarks = details.DistinguishingMarks
	i.Location = details.Location
	i.Date = details.Date
	i.ImageURL = details.ImageURL
	i.Contact = details.Contact
	i.UpdatedAt = time.Now()
	return nil
}

func (i *Item) MarkResolved(at time.Time) {
	i.Status = valueobject.ItemStatusResolved
	i.ResolvedAt = &at
	i.UpdatedAt = at
}

func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}

func (i *Item) IsResolved() bool {
	return i.Status == valueobject.ItemStatusResolved
}

func (i *Item) IsLost() bool {
	return i.Type == valueobject.ItemTypeLost
}

func validateItemDetails(d *ItemDetails) error {
	if !d.Type.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "тип должен быть lost или found")
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	d.Contact = strings.TrimSpace(d.Contact)
	d.DistinguishingMarks = trimOptional(d.DistinguishingMarks)
	d.ImageURL = trimOptional(d.ImageURL)

	checks := []error{
		validation.ValidateLength("название", d.Name, validation.MinItemNameLength, validation.MaxItemNameLength),
		validation.ValidateLength("категория", d.Category, validation.MinCategoryLength, validation.MaxCategoryLength),
		validation.ValidateLength("описание", d.Description, validation.MinItemDescriptionLength, validation.MaxItemDescriptionLength),
		validation.ValidateLength("место", d.Location, validation.MinLocationLength, validation.MaxLocationLength),
		validation.ValidateLength("контакт", d.Contact, validation.MinContactLength, validation.MaxContactLength),
	}
	if d.DistinguishingMarks != nil {
		checks = append(checks, validation.ValidateLength("особые приметы", *d.DistinguishingMarks, 0, validation.MaxItemDescriptionLength))
	}
	if d.ImageURL != nil {
		checks = append(checks, validation.ValidateExternalLink(d.ImageURL))
	}
	for _, err := range checks {
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	if d.Date.IsZero() {
		return apperror.New(apperror.ErrCodeValidation, "дата обязательна")
	}
	if d.Date.After(time.Now().Add(24 * time.Hour)) {
		return apperror.New(apperror.ErrCodeValidation, "дата не может быть в будущем")
	}
	return nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
