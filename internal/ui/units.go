package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

var ErrUnknownUnit = errors.New("unknown size unit")

// Unit selects how byte counts are rendered
type Unit string

const (
	// UnitBinary renders powers of 1024 (KiB, MiB, ...)
	UnitBinary Unit = "binary"
	// UnitDecimal renders powers of 1000 (kB, MB, ...)
	UnitDecimal Unit = "decimal"
	// UnitBytes renders the raw byte count
	UnitBytes Unit = "bytes"
)

// ParseUnit parses a size unit name
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "binary", "iec":
		return UnitBinary, nil
	case "decimal", "si":
		return UnitDecimal, nil
	case "bytes", "b":
		return UnitBytes, nil
	default:
		return "", fmt.Errorf("%w %q (valid: binary, decimal, bytes)", ErrUnknownUnit, s)
	}
}

// FormatSize renders a byte count in the given unit
func FormatSize(size uint64, unit Unit) string {
	switch unit {
	case UnitDecimal:
		return units.HumanSize(float64(size))
	case UnitBytes:
		return strconv.FormatUint(size, 10)
	default:
		return units.BytesSize(float64(size))
	}
}
