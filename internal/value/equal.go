package value

// Eq implements `eq?`: pointer/tag identity for reference types, value
// identity for small immediates (spec §4.11 "Equality").
func Eq(a, b Value) bool {
	switch x := a.(type) {
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Character:
		y, ok := b.(Character)
		return ok && x == y
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.Name == y.Name && x.Colour == y.Colour
	case emptyList:
		_, ok := b.(emptyList)
		return ok
	case Unspecified:
		_, ok := b.(Unspecified)
		return ok
	case eofObject:
		_, ok := b.(eofObject)
		return ok
	case Number:
		y, ok := b.(Number)
		// eq? on numbers is implementation-defined for boxed exacts; here
		// small exact integers compare equal by value, matching how most
		// interpreters make (eq? 1 1) => #t hold for fixnum-range integers.
		return ok && x.kind == kindInt && y.kind == kindInt && x.i.Cmp(y.i) == 0
	case *Pair:
		y, ok := b.(*Pair)
		return ok && x == y
	case *String:
		y, ok := b.(*String)
		return ok && x == y
	case *Vector:
		y, ok := b.(*Vector)
		return ok && x == y
	case *Bytevector:
		y, ok := b.(*Bytevector)
		return ok && x == y
	case *Box:
		y, ok := b.(*Box)
		return ok && x == y
	case *Record:
		y, ok := b.(*Record)
		return ok && x == y
	case *HashTable:
		y, ok := b.(*HashTable)
		return ok && x == y
	case *Promise:
		y, ok := b.(*Promise)
		return ok && x == y
	case *ExternalObject:
		y, ok := b.(*ExternalObject)
		return ok && x == y
	case *Procedure:
		y, ok := b.(*Procedure)
		return ok && x == y
	case *Port:
		y, ok := b.(*Port)
		return ok && x == y
	default:
		return a == b
	}
}

// Eqv extends Eq with full numeric/character equality modulo exactness
// (spec §4.11): (eqv? 1 1.0) is #f (different exactness), (eqv? 1 1) is #t.
func Eqv(a, b Value) bool {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if aok && bok {
		if an.IsExact() != bn.IsExact() {
			return false
		}
		return NumEqual(an, bn)
	}
	return Eq(a, b)
}

// Equal implements `equal?`: deep structural equality (spec §4.11).
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Pair:
		y, ok := b.(*Pair)
		return ok && Equal(x.Car, y.Car) && Equal(x.Cdr, y.Cdr)
	case *String:
		y, ok := b.(*String)
		return ok && x.Go() == y.Go()
	case *Vector:
		y, ok := b.(*Vector)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Bytevector:
		y, ok := b.(*Bytevector)
		if !ok || len(x.Bytes) != len(y.Bytes) {
			return false
		}
		for i := range x.Bytes {
			if x.Bytes[i] != y.Bytes[i] {
				return false
			}
		}
		return true
	case *Record:
		y, ok := b.(*Record)
		if !ok || x.Type != y.Type || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case *Box:
		y, ok := b.(*Box)
		return ok && Equal(x.V, y.V)
	default:
		return Eqv(a, b)
	}
}
