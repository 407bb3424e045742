package export

import "errors"

var (
	ErrWorkbook = errors.New("build workbook")
	ErrWrite    = errors.New("write workbook")
)
