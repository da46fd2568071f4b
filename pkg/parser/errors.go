package parser

import "fmt"

func wrapRange(sentinel error, line int, value int32, min, max int32) error {
	return fmt.Errorf("%w: line %d: value %d out of range %d..%d", sentinel, line, value, min, max)
}
