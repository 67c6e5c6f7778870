// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export renders the category forest as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"efoodadmin/internal/catalog"
)

const (
	// CategoriesSheet lists every visible row of the forest, depth first.
	CategoriesSheet = "Categories"
	// OrphansSheet lists categories that are hidden from the forest.
	OrphansSheet = "Orphans"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"ID",
	"Category",
	"Type",
	"Depth",
	"Parents",
	"Short Description",
	"Cover Image",
	"Created",
	"Updated",
}

// Catalog produces XLSX bytes for category exports.
type Catalog struct {
	logger *slog.Logger
}

// NewCatalog returns an exporter logging to logger (slog.Default when nil).
func NewCatalog(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{logger: logger}
}

// Filename returns the download name for an export taken at now.
func Filename(now time.Time) string {
	return "categories-" + now.Format("20060102-1504") + ".xlsx"
}

// CategoriesXLSX writes every node of t, fully expanded, one row per
// occurrence. A multi-parent category appears under each of its parents.
func (c *Catalog) CategoriesXLSX(t *catalog.Tree) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CategoriesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(OrphansSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	idx, _ := f.GetSheetIndex(CategoriesSheet)
	f.SetActiveSheet(idx)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for _, sheet := range []string{CategoriesSheet, OrphansSheet} {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		end, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", end, bold)
	}

	// One indent style per depth, created on demand.
	indents := map[int]int{}
	indentStyle := func(depth int) (int, error) {
		if id, ok := indents[depth]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: depth}})
		if err != nil {
			return 0, err
		}
		indents[depth] = id
		return id, nil
	}

	rows := catalog.Flatten(t)
	for i, r := range rows {
		cat, ok := t.Category(r.ID)
		if !ok {
			continue
		}
		line := i + 2
		writeRow(f, CategoriesSheet, line, cat, r.Depth, t)

		if r.Depth > 0 {
			style, err := indentStyle(r.Depth)
			if err != nil {
				return nil, fmt.Errorf("indent style: %w", err)
			}
			cell, _ := excelize.CoordinatesToCellName(2, line)
			_ = f.SetCellStyle(CategoriesSheet, cell, cell, style)
		}
	}

	orphans := t.Orphans()
	for i, cat := range orphans {
		writeRow(f, OrphansSheet, i+2, cat, 0, t)
	}

	for _, sheet := range []string{CategoriesSheet, OrphansSheet} {
		_ = f.SetColWidth(sheet, "A", "A", 8)  // id
		_ = f.SetColWidth(sheet, "B", "B", 32) // name
		_ = f.SetColWidth(sheet, "C", "D", 10) // type, depth
		_ = f.SetColWidth(sheet, "E", "E", 28) // parents
		_ = f.SetColWidth(sheet, "F", "F", 48) // description
		_ = f.SetColWidth(sheet, "G", "G", 40) // cover
		_ = f.SetColWidth(sheet, "H", "I", 20) // timestamps
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	c.logger.Info("categories exported",
		"rows", len(rows),
		"orphans", len(orphans),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, line int, cat *catalog.Category, depth int, t *catalog.Tree) {
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, line)
		_ = f.SetCellValue(sheet, cell, v)
	}

	kind := "Parent"
	if cat.IsSubCategory {
		kind = "Sub"
	}

	write(1, cat.ID)
	write(2, cat.CategoryName)
	write(3, kind)
	write(4, depth)
	write(5, parentNames(cat, t))
	write(6, cat.ShortDescription)
	write(7, cat.CoverImage)
	write(8, cat.CreatedAt)
	write(9, cat.UpdatedAt)
}

// parentNames lists the resolvable parents of a sub-category by name,
// falling back to "#id" for ids missing from the tree.
func parentNames(cat *catalog.Category, t *catalog.Tree) string {
	if !cat.IsSubCategory {
		return ""
	}
	names := make([]string, 0, len(cat.ParentCategoryIDs))
	for _, pid := range cat.ParentCategoryIDs {
		if p, ok := t.Category(pid); ok {
			names = append(names, p.CategoryName)
		} else {
			names = append(names, "#"+strconv.Itoa(pid))
		}
	}
	return strings.Join(names, ", ")
}
