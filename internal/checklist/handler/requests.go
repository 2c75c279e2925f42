package handler

type initializeRequest struct {
	Type string `json:"type"`
}

type addItemRequest struct {
	ChecklistType string `json:"checklistType"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	IsRequired    bool   `json:"isRequired"`
}
