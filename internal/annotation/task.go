package annotation

// Domain is the kind of problem a task solves.
type Domain string

const (
	DomainClassification        Domain = "CLASSIFICATION"
	DomainDetection             Domain = "DETECTION"
	DomainRotatedDetection      Domain = "DETECTION_ROTATED_BOUNDING_BOX"
	DomainSegmentation          Domain = "SEGMENTATION"
	DomainInstanceSegmentation  Domain = "SEGMENTATION_INSTANCE"
	DomainKeypoint              Domain = "KEYPOINT_DETECTION"
	DomainAnomalyClassification Domain = "ANOMALY_CLASSIFICATION"
	DomainAnomalyDetection      Domain = "ANOMALY_DETECTION"
	DomainAnomalySegmentation   Domain = "ANOMALY_SEGMENTATION"
)

// Domains lists every known domain.
var Domains = []Domain{
	DomainClassification,
	DomainDetection,
	DomainRotatedDetection,
	DomainSegmentation,
	DomainInstanceSegmentation,
	DomainKeypoint,
	DomainAnomalyClassification,
	DomainAnomalyDetection,
	DomainAnomalySegmentation,
}

// IsValid reports whether d is one of Domains.
func (d Domain) IsValid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

func (d Domain) IsClassification() bool { return d == DomainClassification }

// IsDetection reports whether d is plain (axis-aligned) detection.
func (d Domain) IsDetection() bool { return d == DomainDetection }

func (d Domain) IsSegmentation() bool {
	return d == DomainSegmentation || d == DomainInstanceSegmentation
}

func (d Domain) IsAnomaly() bool {
	switch d {
	case DomainAnomalyClassification, DomainAnomalyDetection, DomainAnomalySegmentation:
		return true
	}
	return false
}

// Task is one step of a project's task chain.
type Task struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Domain Domain  `json:"domain"`
	Labels []Label `json:"labels"`
}

// HasLabel reports whether label belongs to t.
func (t Task) HasLabel(label Label) bool {
	for _, l := range t.Labels {
		if l.ID == label.ID {
			return true
		}
	}
	return false
}

// FindLabel returns the label of t with the given id.
func (t Task) FindLabel(id string) (Label, bool) {
	for _, l := range t.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}
