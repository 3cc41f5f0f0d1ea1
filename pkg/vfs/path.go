package vfs

import "strings"

// DriveCount is the number of drive slots, one per letter A..Z.
const DriveCount = 'Z' - 'A' + 1

// Letter is a drive letter in A..Z.
type Letter byte

// Valid reports whether l is in A..Z.
func (l Letter) Valid() bool {
	return l >= 'A' && l <= 'Z'
}

func (l Letter) index() int {
	return int(l - 'A')
}

func (l Letter) String() string {
	return string(rune(l))
}

// ParseLetter parses a drive token. The token must be exactly one
// character in A..Z.
func ParseLetter(s string) (Letter, error) {
	if len(s) != 1 {
		return 0, NewError(ErrInvalidDrive, s)
	}
	l := Letter(s[0])
	if !l.Valid() {
		return 0, NewError(ErrInvalidDrive, s)
	}
	return l, nil
}

// SplitDrive splits "L:rest" into the drive letter and the remainder.
//
// Returns ErrInvalidPath when there is no ':' and ErrInvalidDrive when the
// token before it is not a single letter in A..Z. The remainder is returned
// untouched.
func SplitDrive(path string) (Letter, string, error) {
	drive, rest, ok := strings.Cut(path, ":")
	if !ok {
		return 0, "", NewError(ErrInvalidPath, path)
	}
	letter, err := ParseLetter(drive)
	if err != nil {
		return 0, "", err
	}
	return letter, rest, nil
}

// SplitParent splits a path into its parent directory path and final name.
//
// The parent keeps the trailing '/' ("A:/foo/bar" → "A:/foo/", "bar").
// Returns ErrInvalidPath when the path has no '/' or the name is empty.
func SplitParent(path string) (parent, name string, err error) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", "", NewError(ErrInvalidPath, path)
	}
	parent, name = path[:i+1], path[i+1:]
	if name == "" {
		return "", "", NewError(ErrInvalidPath, path)
	}
	return parent, name, nil
}
