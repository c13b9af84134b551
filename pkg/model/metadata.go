// pkg/model/metadata.go
package model

import "strings"

// Kind is the semantic type of a column in the sales record schema
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindNumeric
	KindDateTime
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindNumeric:
		return "numeric"
	case KindDateTime:
		return "datetime"
	default:
		return "text"
	}
}

// Sales record column names
const (
	ColOrderNumber      = "ORDERNUMBER"
	ColQuantityOrdered  = "QUANTITYORDERED"
	ColPriceEach        = "PRICEEACH"
	ColOrderLineNumber  = "ORDERLINENUMBER"
	ColSales            = "SALES"
	ColOrderDate        = "ORDERDATE"
	ColStatus           = "STATUS"
	ColQtrID            = "QTR_ID"
	ColProductLine      = "PRODUCTLINE"
	ColMSRP             = "MSRP"
	ColCustomerName     = "CUSTOMERNAME"
	ColPhone            = "PHONE"
	ColAddressLine1     = "ADDRESSLINE1"
	ColAddressLine2     = "ADDRESSLINE2"
	ColState            = "STATE"
	ColPostalCode       = "POSTALCODE"
	ColCountry          = "COUNTRY"
	ColTerritory        = "TERRITORY"
	ColContactLastName  = "CONTACTLASTNAME"
	ColContactFirstName = "CONTACTFIRSTNAME"
	ColDealSize         = "DEALSIZE"

	ColRecommendedPrice = "RECOMMENDEDPRICE"
	ColCompanyName      = "COMPANYNAME"
	ColLastName         = "LASTNAME"
	ColFirstName        = "FIRSTNAME"

	ColYear  = "YEAR"
	ColMonth = "MONTH"

	// Present in the source dataset, outside the known schema, passed through
	ColYearID  = "YEAR_ID"
	ColMonthID = "MONTH_ID"
)

// SentinelUnknown replaces every absent cell during null resolution
const SentinelUnknown = "Unknown"

// ColumnSpec describes a single column of the record schema
type ColumnSpec struct {
	Name string
	Kind Kind
}

// TableMetadata describes the expected columns of a sales table
type TableMetadata struct {
	Table   string
	Columns []ColumnSpec
}

// SalesInputSchema is the pre-clean record schema
var SalesInputSchema = TableMetadata{
	Table: "sales",
	Columns: []ColumnSpec{
		{Name: ColOrderNumber, Kind: KindInteger},
		{Name: ColQuantityOrdered, Kind: KindInteger},
		{Name: ColPriceEach, Kind: KindNumeric},
		{Name: ColOrderLineNumber, Kind: KindInteger},
		{Name: ColSales, Kind: KindNumeric},
		{Name: ColOrderDate, Kind: KindText},
		{Name: ColStatus, Kind: KindText},
		{Name: ColQtrID, Kind: KindInteger},
		{Name: ColProductLine, Kind: KindText},
		{Name: ColMSRP, Kind: KindNumeric},
		{Name: ColCustomerName, Kind: KindText},
		{Name: ColPhone, Kind: KindText},
		{Name: ColAddressLine1, Kind: KindText},
		{Name: ColAddressLine2, Kind: KindText},
		{Name: ColState, Kind: KindText},
		{Name: ColPostalCode, Kind: KindText},
		{Name: ColCountry, Kind: KindText},
		{Name: ColTerritory, Kind: KindText},
		{Name: ColContactLastName, Kind: KindText},
		{Name: ColContactFirstName, Kind: KindText},
		{Name: ColDealSize, Kind: KindText},
	},
}

// OutputColumns is the post-clean column set for a table holding exactly the
// input schema columns, in output order
var OutputColumns = []string{
	ColOrderNumber,
	ColQuantityOrdered,
	ColPriceEach,
	ColSales,
	ColOrderDate,
	ColProductLine,
	ColRecommendedPrice,
	ColCompanyName,
	ColCountry,
	ColDealSize,
	ColYear,
	ColMonth,
}

// RenameMapping lists source -> canonical name in application order
var RenameMapping = []struct{ From, To string }{
	{ColMSRP, ColRecommendedPrice},
	{ColCustomerName, ColCompanyName},
	{ColContactLastName, ColLastName},
	{ColContactFirstName, ColFirstName},
}

// DroppedColumns are removed after renaming
var DroppedColumns = []string{
	ColOrderLineNumber,
	ColStatus,
	ColQtrID,
	ColPhone,
	ColAddressLine1,
	ColAddressLine2,
	ColState,
	ColPostalCode,
	ColTerritory,
	ColLastName,
	ColFirstName,
}

// GetColumnByName returns a column spec by name (case-insensitive).
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *ColumnSpec {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// KindOf returns the kind of the named column, KindText for unknown columns
func (tm *TableMetadata) KindOf(name string) Kind {
	if col := tm.GetColumnByName(name); col != nil {
		return col.Kind
	}
	return KindText
}

// Names returns the column names in schema order
func (tm *TableMetadata) Names() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// MissingColumns returns the schema columns t does not have
func (tm *TableMetadata) MissingColumns(t *Table) []string {
	var missing []string
	for _, col := range tm.Columns {
		if !t.HasColumn(col.Name) {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

func normalizeColumnName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
