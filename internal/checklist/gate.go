package checklist

// selfCompletable is the closed allow-list of item types a tenant may mark
// complete themselves, per checklist type. Everything else is admin-only.
// This is a compile-time table, never mutated at runtime.
var selfCompletable = map[Type]map[ItemType]bool{
	TypeMoveIn: {
		ItemInsuranceUploaded: true,
	},
	TypeMoveOut: {
		ItemForwardingAddress:    true,
		ItemUtilitiesTransferred: true,
	},
}

// CanSelfComplete reports whether a tenant actor may mark the item complete.
// Item-specific preconditions (insurance validity) layer on top in the
// service; this answers only the allow-list question.
func CanSelfComplete(item *Item) bool {
	return selfCompletable[item.ChecklistType][item.ItemType]
}
