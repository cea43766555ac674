/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strings"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Direction is the sort direction of an order term.
type Direction int

const (
	Asc Direction = iota
	Desc
)

var _ BaseEnum = Asc

func (d Direction) IsValid() bool { return d == Asc || d == Desc }

func (d Direction) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d Direction) Name() string {
	switch d {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	}
	return IllegalName
}

func (d Direction) String() string { return d.Name() }

func (d Direction) Desc() string {
	switch d {
	case Asc:
		return "ascending"
	case Desc:
		return "descending"
	}
	return IllegalDesc
}

// ParseDirection accepts "asc"/"desc" in any case; empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return Direction(IllegalValue), fmt.Errorf("invalid sort direction: %q", s)
}

// NullHandling controls where NULL values sort relative to non-null values.
type NullHandling int

const (
	// NullsNative leaves NULL placement to the database.
	NullsNative NullHandling = iota
	NullsFirst
	NullsLast
)

var _ BaseEnum = NullsNative

func (n NullHandling) IsValid() bool { return n >= NullsNative && n <= NullsLast }

func (n NullHandling) Number() int {
	if !n.IsValid() {
		return IllegalValue
	}
	return int(n)
}

func (n NullHandling) Name() string {
	switch n {
	case NullsNative:
		return "NATIVE"
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	}
	return IllegalName
}

func (n NullHandling) String() string { return n.Name() }

func (n NullHandling) Desc() string {
	switch n {
	case NullsNative:
		return "database default null ordering"
	case NullsFirst:
		return "nulls before values"
	case NullsLast:
		return "nulls after values"
	}
	return IllegalDesc
}

// ParseNullHandling accepts "first", "last", "nullsfirst", "nulls_last" and empty.
func ParseNullHandling(s string) (NullHandling, error) {
	v := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "", "native":
		return NullsNative, nil
	case "first", "nullsfirst":
		return NullsFirst, nil
	case "last", "nullslast":
		return NullsLast, nil
	}
	return NullHandling(IllegalValue), fmt.Errorf("invalid null handling: %q", s)
}
