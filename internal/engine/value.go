package engine

// Value is the closed union of in-memory answer shapes, one per question
// type. The compiler cannot seal interfaces, so the unexported method keeps
// outside packages from adding cases the scoring switch does not know about.
type Value interface {
	isResponseValue()
}

// ChoiceValue answers a single_choice question.
type ChoiceValue struct {
	OptionID uint `json:"option_id"`
}

// MatrixValue answers a matrix_rating question: row option id -> rating value.
type MatrixValue struct {
	Ratings map[uint]string `json:"ratings"`
}

// OrderValue answers a ranked_sequence question with option ids in the
// user's chosen order.
type OrderValue struct {
	Order []uint `json:"order"`
}

// ScaleValue answers a numeric_scale question.
type ScaleValue struct {
	Number float64 `json:"number"`
}

func (ChoiceValue) isResponseValue() {}
func (MatrixValue) isResponseValue() {}
func (OrderValue) isResponseValue()  {}
func (ScaleValue) isResponseValue()  {}
