// Package domain contains pure, dependency-free domain models and types
// for the decision engine.
package domain

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Key represents a type-safe generic key for accessing values in Data.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the string identifier of the key.
func (k Key[T]) Name() string { return k.name }

// Predefined method inputs attached to a DecisionMatrix.
var (
	// KeyPairwiseCriteria stores the square pairwise comparison matrix over
	// criteria consumed by AHP.
	KeyPairwiseCriteria = Key[[][]float64]{"pairwise_criteria"}

	// KeyPairwiseAlternatives stores one square pairwise comparison matrix
	// over alternatives per criterion, in criterion order.
	KeyPairwiseAlternatives = Key[[][][]float64]{"pairwise_alternatives"}

	// KeyPreferences stores one preference function setting per criterion
	// for the outranking engine.
	KeyPreferences = Key[[]PreferenceSetting]{"preferences"}
)

// Diagnostic keys populated on a Result by the engines.
var (
	// TOPSIS.
	KeyPIS         = Key[[]float64]{"pis"}
	KeyNIS         = Key[[]float64]{"nis"}
	KeyDistancePIS = Key[[]float64]{"dist_pis"}
	KeyDistanceNIS = Key[[]float64]{"dist_nis"}

	// AHP.
	KeyCriteriaWeights          = Key[[]float64]{"criteria_weights"}
	KeyAlternativeWeights       = Key[[][]float64]{"alternatives_weights"}
	KeyConsistencyRatio         = Key[float64]{"consistency_ratio"}
	KeyCriteriaConsistencyRatio = Key[float64]{"criteria_consistency_ratio"}

	// PROMETHEE.
	KeyPreferenceMatrix = Key[[][]float64]{"preference_matrix"}
	KeyOutflow          = Key[[]float64]{"outflow"}
	KeyInflow           = Key[[]float64]{"inflow"}

	// MARCOS.
	KeyIdeal           = Key[[]float64]{"ideal"}
	KeyAntiIdeal       = Key[[]float64]{"anti_ideal"}
	KeyUtilityPositive = Key[[]float64]{"utility_positive"}
	KeyUtilityNegative = Key[[]float64]{"utility_negative"}
)

// PreferenceSetting selects the preference function and thresholds used for
// one criterion by the outranking engine. Function names are resolved by
// the engine; the domain only carries them.
type PreferenceSetting struct {
	// Function is the preference function name (e.g. "usual", "linear").
	Function string `json:"function" yaml:"function"`

	// Q is the indifference threshold.
	Q float64 `json:"q" yaml:"q"`

	// P is the preference threshold.
	P float64 `json:"p" yaml:"p"`
}

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of Data contents.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return value
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			elem := deepCopyValue(v.Index(i).Interface())
			if elem == nil {
				continue
			}
			newSlice.Index(i).Set(reflect.ValueOf(elem))
		}
		return newSlice.Interface()

	case reflect.Map:
		if v.IsNil() {
			return value
		}
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			if copiedValue == nil {
				newMap.SetMapIndex(key, reflect.Zero(v.Type().Elem()))
				continue
			}
			newMap.SetMapIndex(key, reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	default:
		// Primitive types and plain structs are copied by value.
		return value
	}
}

// Data is an immutable, typed side channel of method inputs or method
// diagnostics. It uses copy-on-write semantics so a DecisionMatrix or
// Result can hand it out without exposing its internals.
type Data struct {
	// data holds the key-value pairs. It is unexported to maintain
	// immutability guarantees.
	data map[string]any
}

// NewData creates a new empty Data.
func NewData() Data {
	return Data{data: make(map[string]any)}
}

// Get retrieves a value from Data with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and holds a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	pis, ok := Get(result.Diagnostics(), KeyPIS)
//	if !ok {
//	    // diagnostic not produced by this method
//	}
func Get[T any](d Data, key Key[T]) (T, bool) {
	var zero T
	value, exists := d.data[key.name]
	if !exists {
		return zero, false
	}

	val, ok := deepCopyValue(value).(T)
	return val, ok
}

// Has reports whether a key is present regardless of its type.
func (d Data) Has(keyName string) bool {
	_, ok := d.data[keyName]
	return ok
}

// With creates a new Data with the specified key-value pair added or
// updated, leaving the original unchanged.
//
// Example:
//
//	diagnostics := With(NewData(), KeyOutflow, outflow)
func With[T any](d Data, key Key[T], value T) Data {
	newData := maps.Clone(d.data)
	if newData == nil {
		newData = make(map[string]any)
	}
	newData[key.name] = deepCopyValue(value)
	return Data{data: newData}
}

// Keys returns all keys present in Data in sorted order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored entries.
func (d Data) Len() int { return len(d.data) }

// clone returns an independent deep copy.
func (d Data) clone() Data {
	newData := make(map[string]any, len(d.data))
	for k, v := range d.data {
		newData[k] = deepCopyValue(v)
	}
	return Data{data: newData}
}

// String returns a string representation of Data for debugging purposes.
func (d Data) String() string {
	return fmt.Sprintf("Data%v", d.Keys())
}
