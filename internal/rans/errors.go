package rans

import "errors"

var (
	errEmptyHistogram = errors.New("rans: cannot build a table from an empty histogram")
	errShortGroupList = errors.New("rans: group record list too short to contain a raw band and sentinel")
)
