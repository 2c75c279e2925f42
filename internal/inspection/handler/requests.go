package handler

type initializeRequest struct {
	Phase string `json:"phase"`
}

type updateItemRequest struct {
	Condition *string `json:"condition"`
	Notes     *string `json:"notes"`
}

type damageReportRequest struct {
	DamageFound bool   `json:"damageFound"`
	DamageNotes string `json:"damageNotes"`
}

type reopenRequest struct {
	Reason string `json:"reason"`
}
