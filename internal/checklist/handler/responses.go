package handler

import (
	"time"

	"quarters/internal/checklist"
)

type itemResponse struct {
	ID            string     `json:"id"`
	TenancyID     string     `json:"tenancyId"`
	ChecklistType string     `json:"checklistType"`
	ItemType      string     `json:"itemType"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	IsRequired    bool       `json:"isRequired"`
	IsCompleted   bool       `json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CompletedBy   string     `json:"completedBy,omitempty"`
	SortOrder     int        `json:"sortOrder"`
}

type progressResponse struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	RequiredTotal     int `json:"requiredTotal"`
	RequiredCompleted int `json:"requiredCompleted"`
}

type listResponse struct {
	Items    []itemResponse   `json:"items"`
	Progress progressResponse `json:"progress"`
}

func fromItem(item *checklist.Item) itemResponse {
	resp := itemResponse{
		ID:            item.ID.String(),
		TenancyID:     item.TenancyID.String(),
		ChecklistType: string(item.ChecklistType),
		ItemType:      string(item.ItemType),
		Title:         item.Title,
		Description:   item.Description,
		IsRequired:    item.IsRequired,
		IsCompleted:   item.IsCompleted,
		CompletedAt:   item.CompletedAt,
		SortOrder:     item.SortOrder,
	}
	if !item.CompletedBy.IsNil() {
		resp.CompletedBy = item.CompletedBy.String()
	}
	return resp
}

func fromItems(items []*checklist.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, fromItem(item))
	}
	return out
}

func fromProgress(p checklist.Progress) progressResponse {
	return progressResponse{
		Total:             p.Total,
		Completed:         p.Completed,
		RequiredTotal:     p.RequiredTotal,
		RequiredCompleted: p.RequiredCompleted,
	}
}
