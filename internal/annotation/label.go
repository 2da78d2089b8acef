package annotation

// Behaviour is the bitmask describing how a label acts on an image.
// Bits are not mutually exclusive: an anomaly "Anomalous" label is both
// Global and Anomalous, an "Empty" label both Global and Exclusive.
type Behaviour uint8

const (
	Local Behaviour = 1 << iota
	Global
	Exclusive
	Anomalous
	Background
)

// Has reports whether all bits of flag are set.
func (b Behaviour) Has(flag Behaviour) bool {
	return b&flag == flag
}

// Label is a class a project annotates with.
type Label struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	Hotkey        string    `json:"hotkey,omitempty"`
	Group         string    `json:"group"`
	ParentLabelID *string   `json:"parentLabelId"`
	Behaviour     Behaviour `json:"behaviour"`
	IsEmpty       bool      `json:"isEmpty"`

	// IsDeleted marks a label removed from the project that is kept around
	// so annotations referencing it can still be revisited.
	IsDeleted bool `json:"isDeleted,omitempty"`
}

// LabelSource records who assigned a label to an annotation.
// Exactly one of UserID and ModelID is expected to be set.
type LabelSource struct {
	UserID  string `json:"userId,omitempty"`
	ModelID string `json:"modelId,omitempty"`
}

// AnnotationLabel is a label as attached to an annotation.
type AnnotationLabel struct {
	Label
	Score  *float64    `json:"score,omitempty"`
	Source LabelSource `json:"source"`
}

// NewAnnotationLabel attaches label with no score and no attribution, as
// when a user picks it in the UI.
func NewAnnotationLabel(label Label) AnnotationLabel {
	return AnnotationLabel{Label: label}
}

// LabelsOf wraps labels into annotation labels.
func LabelsOf(labels ...Label) []AnnotationLabel {
	out := make([]AnnotationLabel, len(labels))
	for i, l := range labels {
		out[i] = NewAnnotationLabel(l)
	}
	return out
}

func IsExclusive(label Label) bool  { return label.Behaviour.Has(Exclusive) }
func IsLocal(label Label) bool      { return label.Behaviour.Has(Local) }
func IsGlobal(label Label) bool     { return label.Behaviour.Has(Global) }
func IsAnomalous(label Label) bool  { return label.Behaviour.Has(Anomalous) }
func IsBackground(label Label) bool { return label.Behaviour.Has(Background) }

// IsEmpty reports whether label is a project's "empty" label ("No object",
// "Empty").
func IsEmpty(label Label) bool { return label.IsEmpty }

func IsEmptyOrBackground(label Label) bool {
	return IsEmpty(label) || IsBackground(label)
}

// IsNonEmptyLabel reports whether label carries actual class information,
// i.e. is neither an empty label nor an exclusive one.
func IsNonEmptyLabel(label Label) bool {
	return !IsEmpty(label) && !IsExclusive(label)
}

// ShowLabelScore reports whether the score of label is worth displaying.
//
// Only model predictions have a meaningful score. Exclusive labels carry no
// information in most domains, except the anomaly domains where
// Normal/Anomalous is the primary verdict.
func ShowLabelScore(label AnnotationLabel, domain Domain) bool {
	fromModel := label.Score != nil && label.Source.UserID == ""
	if !fromModel {
		return false
	}
	return !IsExclusive(label.Label) || domain.IsAnomaly()
}

// ConflictPredicate reports whether two labels cannot coexist on one
// annotation.
type ConflictPredicate func(label, other Label) bool

// AddLabel returns a new label list with label appended. Any previous
// occurrence of label and every label conflicting with it are evicted first.
// A nil conflicts only evicts the previous occurrence.
func AddLabel(labels []AnnotationLabel, label AnnotationLabel, conflicts ConflictPredicate) []AnnotationLabel {
	out := make([]AnnotationLabel, 0, len(labels)+1)
	for _, existing := range labels {
		if existing.ID == label.ID {
			continue
		}
		if conflicts != nil && conflicts(label.Label, existing.Label) {
			continue
		}
		out = append(out, existing)
	}
	return append(out, label)
}

// RemoveLabels returns a new label list without the labels of remove.
func RemoveLabels(labels []AnnotationLabel, remove []Label) []AnnotationLabel {
	out := make([]AnnotationLabel, 0, len(labels))
	for _, existing := range labels {
		drop := false
		for _, r := range remove {
			if r.ID == existing.ID {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, existing)
		}
	}
	return out
}
