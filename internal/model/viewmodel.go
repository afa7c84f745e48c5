package model

import (
	"mime/multipart"

	"github.com/shopspring/decimal"
)

// SelectOption is a single entry of a drop-down list
type SelectOption struct {
	Value uint
	Text  string
}

// FormErrors collects validation and persistence errors for a form. Errors added with an
// empty field name belong to the summary shown above the form.
type FormErrors struct {
	Fields  map[string][]string
	Summary []string
}

// Add records msg against field, or against the summary when field is empty
func (f *FormErrors) Add(field, msg string) {
	if field == "" {
		f.Summary = append(f.Summary, msg)
		return
	}
	if f.Fields == nil {
		f.Fields = make(map[string][]string)
	}
	f.Fields[field] = append(f.Fields[field], msg)
}

// For returns the messages recorded for field
func (f *FormErrors) For(field string) []string {
	return f.Fields[field]
}

// IsValid reports whether no error has been recorded
func (f *FormErrors) IsValid() bool {
	return len(f.Summary) == 0 && len(f.Fields) == 0
}

// ProductViewModel is the create/edit form for a product
type ProductViewModel struct {
	ID            uint            `form:"ID"`
	Name          string          `form:"Name" validate:"required,max=50" display:"Name"`
	Price         decimal.Decimal `form:"-"`
	PriceText     string          `form:"Price" display:"Price"`
	Stock         int             `form:"Stock" validate:"gte=0" display:"Stock"`
	IsActive      bool            `form:"IsActive" display:"Is Active"`
	CategoryID    uint            `form:"CategoryID" validate:"required" display:"Category"`
	CompanyID     uint            `form:"CompanyID" validate:"required" display:"Company"`
	Categories    []SelectOption  `form:"-"`
	Companies     []SelectOption  `form:"-"`
	ProductImages []ProductImage  `form:"-"`
	ImageFile     *multipart.FileHeader
	Errors        FormErrors
}

// AddProductImageViewModel is the form used to attach an image to an existing product
type AddProductImageViewModel struct {
	ProductID uint                  `form:"ProductID" validate:"required" display:"Product"`
	ImageFile *multipart.FileHeader `validate:"required" display:"Image"`
	Errors    FormErrors
}
