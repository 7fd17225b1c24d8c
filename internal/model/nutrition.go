package model

import "math"

// Nutrition holds per-recipe nutrient values. A nil field is unknown,
// which is different from zero.
type Nutrition struct {
	Calories  *float64 `gorm:"column:calories" json:"calories,omitempty"`
	Protein   *float64 `gorm:"column:protein" json:"protein,omitempty"`
	Fat       *float64 `gorm:"column:fat" json:"fat,omitempty"`
	Sodium    *float64 `gorm:"column:sodium" json:"sodium,omitempty"`
	Sugar     *float64 `gorm:"column:sugar" json:"sugar,omitempty"`
	Saturates *float64 `gorm:"column:saturates" json:"saturates,omitempty"`
}

// Get returns the named nutrient. ok is false for unknown values and
// unknown names.
func (n Nutrition) Get(name string) (float64, bool) {
	var p *float64
	switch name {
	case "calories":
		p = n.Calories
	case "protein":
		p = n.Protein
	case "fat":
		p = n.Fat
	case "sodium":
		p = n.Sodium
	case "sugar":
		p = n.Sugar
	case "saturates":
		p = n.Saturates
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Add returns the field-wise sum. Unknown fields count as zero.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories:  sum(n.Calories, o.Calories),
		Protein:   sum(n.Protein, o.Protein),
		Fat:       sum(n.Fat, o.Fat),
		Sodium:    sum(n.Sodium, o.Sodium),
		Sugar:     sum(n.Sugar, o.Sugar),
		Saturates: sum(n.Saturates, o.Saturates),
	}
}

func sum(a, b *float64) *float64 {
	if a == nil && b == nil {
		return nil
	}
	var v float64
	if a != nil {
		v += *a
	}
	if b != nil {
		v += *b
	}
	return &v
}

// vectorFields lists the nutrients of the comparison vector and their scale.
var vectorFields = []struct {
	name  string
	scale float64
}{
	{"calories", 1},
	{"protein", 10},
	{"fat", 10},
	{"sodium", 0.1},
}

// Vector returns the scaled comparison vector
// [calories, protein*10, fat*10, sodium/10]. Unknown fields are 0.
func (n Nutrition) Vector() []float32 {
	out := make([]float32, len(vectorFields))
	for i, f := range vectorFields {
		if v, ok := n.Get(f.name); ok {
			out[i] = float32(v * f.scale)
		}
	}
	return out
}

// Distance is the euclidean distance between the scaled vectors over the
// fields both sides know. shared is the number of such fields.
func (n Nutrition) Distance(o Nutrition) (d float64, shared int) {
	var acc float64
	for _, f := range vectorFields {
		a, okA := n.Get(f.name)
		b, okB := o.Get(f.name)
		if !okA || !okB {
			continue
		}
		diff := (a - b) * f.scale
		acc += diff * diff
		shared++
	}
	return math.Sqrt(acc), shared
}

// VectorDistance is the euclidean distance between two stored nutrition
// vectors, matching the pgvector <-> operator.
func VectorDistance(a, b []float32) float64 {
	var s float64
	for i := 0; i < len(a) && i < len(b); i++ {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return math.Sqrt(s)
}

// Float returns a pointer to v, for building Nutrition literals.
func Float(v float64) *float64 {
	return &v
}
