package domain

// MaxReviews bounds how many normalized reviews a snapshot carries; the
// upstream collection can be much larger, we keep a display subset only.
const MaxReviews = 5

// DefaultRating is substituted when upstream omits the aggregate rating.
// Inherited upstream behavior; see DESIGN.md before changing it.
const DefaultRating = 5.0

// Review is a single normalized review as served to clients.
type Review struct {
	Author     string  `json:"author"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
	CreateTime string  `json:"createTime"`
	URL        *string `json:"url"`
}

// Snapshot is the complete, atomically-replaced unit of cached review data.
// Rating and TotalReviewCount are upstream-reported values, never recomputed
// from the Reviews subset.
type Snapshot struct {
	Rating           float64  `json:"rating"`
	TotalReviewCount int      `json:"totalReviewCount"`
	Reviews          []Review `json:"reviews"`
	LastUpdated      string   `json:"lastUpdated"`
}

var starRatings = map[string]int{
	"ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5,
}

// StarRating maps the upstream star enumeration to a numeric rating.
// Unrecognized values map to 0.
func StarRating(s string) int { return starRatings[s] }
