package handler

import (
	"time"

	"quarters/internal/inspection"
)

type inspectionResponse struct {
	ID          string     `json:"id"`
	TenancyID   string     `json:"tenancyId"`
	Phase       string     `json:"phase"`
	Status      string     `json:"status"`
	DamageFound bool       `json:"damageFound"`
	DamageNotes string     `json:"damageNotes,omitempty"`
	IsFinalized bool       `json:"isFinalized"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	FinalizedBy string     `json:"finalizedBy,omitempty"`
}

type itemResponse struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Condition *string         `json:"condition"`
	Notes     string          `json:"notes,omitempty"`
	SortOrder int             `json:"sortOrder"`
	Photos    []photoResponse `json:"photos"`
}

type photoResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	Filename  string    `json:"filename"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type viewResponse struct {
	Inspection inspectionResponse `json:"inspection"`
	Items      []itemResponse     `json:"items"`
}

type finalizeResponse struct {
	Inspection inspectionResponse  `json:"inspection"`
	Warnings   inspection.Warnings `json:"warnings"`
}

func fromInspection(insp *inspection.Inspection) inspectionResponse {
	resp := inspectionResponse{
		ID:          insp.ID.String(),
		TenancyID:   insp.TenancyID.String(),
		Phase:       string(insp.Phase),
		Status:      string(insp.Status),
		DamageFound: insp.DamageFound,
		DamageNotes: insp.DamageNotes,
		IsFinalized: insp.IsFinalized,
		FinalizedAt: insp.FinalizedAt,
	}
	if !insp.FinalizedBy.IsNil() {
		resp.FinalizedBy = insp.FinalizedBy.String()
	}
	return resp
}

func fromInspectionItem(item *inspection.Item) itemResponse {
	resp := itemResponse{
		ID:        item.ID.String(),
		Category:  string(item.Category),
		Notes:     item.Notes,
		SortOrder: item.SortOrder,
		Photos:    []photoResponse{},
	}
	if item.Condition != nil {
		c := string(*item.Condition)
		resp.Condition = &c
	}
	return resp
}

func fromPhoto(photo *inspection.Photo) photoResponse {
	return photoResponse{
		ID:        photo.ID.String(),
		ItemID:    photo.ItemID.String(),
		Filename:  photo.Filename,
		Caption:   photo.Caption,
		CreatedAt: photo.CreatedAt,
	}
}

func fromView(view *inspection.View) viewResponse {
	byItem := make(map[string][]photoResponse)
	for _, photo := range view.Photos {
		key := photo.ItemID.String()
		byItem[key] = append(byItem[key], fromPhoto(photo))
	}

	items := make([]itemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		resp := fromInspectionItem(item)
		if photos := byItem[item.ID.String()]; photos != nil {
			resp.Photos = photos
		}
		items = append(items, resp)
	}
	return viewResponse{
		Inspection: fromInspection(view.Inspection),
		Items:      items,
	}
}
