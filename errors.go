package lneto

// type ErrorPacketDrop struct {
// 	Message string
// }

// var genericErrPacketDrop = &ErrorPacketDrop{Message: ErrPacketDrop.Error()}

// // ErrGenericPacketDrop returns the generic packet drop error. It performs no allocations.
// func ErrGenericPacketDrop() error {
// 	return genericErrPacketDrop
// }

// func (err *ErrorPacketDrop) Error() string {
// 	return err.Message
// }

type errGeneric uint8

// Generic errors common to internet functioning.
const (
	_                     errGeneric = iota // non-initialized err
	ErrPacketDrop                           // packet dropped
	ErrZeroSource                           // zero source(port/addr)
	ErrZeroDestination                      // zero destination(port/addr)
	ErrShortBuffer                          // buffer too short for operation
	ErrInvalidLengthField                   // length field inconsistent with buffer
	ErrInvalidField                         // field holds a disallowed value
)

func (err errGeneric) Error() string {
	return err.String()
}

func (err errGeneric) String() string {
	switch err {
	case ErrPacketDrop:
		return "packet dropped"
	case ErrZeroSource:
		return "zero source(port/addr)"
	case ErrZeroDestination:
		return "zero destination(port/addr)"
	case ErrShortBuffer:
		return "buffer too short for operation"
	case ErrInvalidLengthField:
		return "length field inconsistent with buffer"
	case ErrInvalidField:
		return "field holds a disallowed value"
	default:
		return "non-initialized err"
	}
}
