package exporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"ppconvert/internal/model"
)

// 导出默认值
const (
	DefaultSheetName = "Preview"
	DefaultFlagColor = "#E6B8B7"

	minColWidth = 5
	numFmtComma = 3 // 内置格式 #,##0
)

// Options 导出选项
type Options struct {
	SheetName    string
	FlagColor    string
	TemplatePath string // 可选：在已有工作簿上追加/覆盖工作表
}

// Exporter 作业记录 xlsx 导出器
type Exporter struct {
	opts Options
}

// New 创建导出器，空选项取默认值
func New(opts Options) *Exporter {
	if strings.TrimSpace(opts.SheetName) == "" {
		opts.SheetName = DefaultSheetName
	}
	if strings.TrimSpace(opts.FlagColor) == "" {
		opts.FlagColor = DefaultFlagColor
	}
	if !strings.HasPrefix(opts.FlagColor, "#") {
		opts.FlagColor = "#" + opts.FlagColor
	}
	return &Exporter{opts: opts}
}

// OutputName 源文件名去扩展名 + .xlsx
func OutputName(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		base = "output"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}

// FlaggedCount 需人工复核的单元格数
func FlaggedCount(records []model.OperationRecord) int {
	n := 0
	for _, r := range records {
		for _, key := range model.ColumnKeys {
			if r.Field(key).Flagged {
				n++
			}
		}
	}
	return n
}

type styles struct {
	flag    int
	dwt     int
	dwtFlag int
}

// Export 生成工作簿：表头一行，之后每条记录一行；标记单元格填充底色，0 值留空
func (e *Exporter) Export(records []model.OperationRecord, progress func(ProgressEvent)) (*excelize.File, error) {
	f, err := e.openWorkbook()
	if err != nil {
		return nil, err
	}

	if err := e.fill(f, records, progress); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteFile 导出并保存到 path
func (e *Exporter) WriteFile(records []model.OperationRecord, path string, progress func(ProgressEvent)) error {
	f, err := e.Export(records, progress)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存导出文件失败: %w", err)
	}
	return nil
}

// WriteTo 导出并写入 w
func (e *Exporter) WriteTo(w io.Writer, records []model.OperationRecord) error {
	f, err := e.Export(records, nil)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("写出导出文件失败: %w", err)
	}
	return nil
}

func (e *Exporter) openWorkbook() (*excelize.File, error) {
	if p := strings.TrimSpace(e.opts.TemplatePath); p != "" {
		f, err := excelize.OpenFile(p)
		if err != nil {
			return nil, fmt.Errorf("打开模板失败: %w", err)
		}
		idx, err := f.GetSheetIndex(e.opts.SheetName)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("读取模板工作表失败: %w", err)
		}
		if idx < 0 {
			if idx, err = f.NewSheet(e.opts.SheetName); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("创建工作表失败: %w", err)
			}
		}
		f.SetActiveSheet(idx)
		return f, nil
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), e.opts.SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("设置工作表名失败: %w", err)
	}
	return f, nil
}

func (e *Exporter) newStyles(f *excelize.File) (styles, error) {
	fill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.opts.FlagColor}}

	var s styles
	var err error
	if s.flag, err = f.NewStyle(&excelize.Style{Fill: fill}); err != nil {
		return s, fmt.Errorf("创建样式失败: %w", err)
	}
	if s.dwt, err = f.NewStyle(&excelize.Style{NumFmt: numFmtComma}); err != nil {
		return s, fmt.Errorf("创建样式失败: %w", err)
	}
	if s.dwtFlag, err = f.NewStyle(&excelize.Style{NumFmt: numFmtComma, Fill: fill}); err != nil {
		return s, fmt.Errorf("创建样式失败: %w", err)
	}
	return s, nil
}

func (e *Exporter) fill(f *excelize.File, records []model.OperationRecord, progress func(ProgressEvent)) error {
	sheet := e.opts.SheetName
	st, err := e.newStyles(f)
	if err != nil {
		return err
	}

	widths := make([]int, len(model.ColumnKeys))
	grow := func(col int, text string) {
		w := max(utf8.RuneCountInString(text)+2, minColWidth)
		if w > widths[col] {
			widths[col] = w
		}
	}

	reportProgress(progress, 5, StageHeader)
	for i, key := range model.ColumnKeys {
		header := model.ColumnHeaders[key]
		if header == "" {
			header = key
		}
		if err := setCell(f, sheet, i+1, 1, header); err != nil {
			return err
		}
		grow(i, header)
	}

	for r, rec := range records {
		row := r + 2
		for i, key := range model.ColumnKeys {
			cell := rec.Field(key)
			if !cell.IsZero() {
				if err := setCell(f, sheet, i+1, row, cell.Value); err != nil {
					return err
				}
				grow(i, cell.String())
			}

			style := 0
			switch {
			case key == "dwt" && cell.Flagged:
				style = st.dwtFlag
			case key == "dwt":
				style = st.dwt
			case cell.Flagged:
				style = st.flag
			}
			if style != 0 {
				name, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, name, name, style); err != nil {
					return fmt.Errorf("设置样式失败 %s: %w", name, err)
				}
			}
		}
		if len(records) > 0 {
			reportProgress(progress, 10+80*(r+1)/len(records), StageRows)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(w)); err != nil {
			return fmt.Errorf("设置列宽失败 %s: %w", col, err)
		}
	}

	reportProgress(progress, 100, StageDone)
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, name, value); err != nil {
		return fmt.Errorf("写入单元格失败 %s: %w", name, err)
	}
	return nil
}
