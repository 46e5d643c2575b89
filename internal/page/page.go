// Package page は一覧 API 用のページング計算を提供します。
package page

import (
	"math"
	"strconv"
	"strings"
)

// DefaultSize は 1 ページあたりの既定件数です。
const DefaultSize = 10

// Page は一覧クエリのページ情報です。生成後は変更しません。
type Page struct {
	ItemCount   int  `json:"item_count"`
	PageIndex   int  `json:"page_index"`
	PageSize    int  `json:"page_size"`
	PageCount   int  `json:"page_count"`
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ParseIndex はクエリ文字列のページ番号を解釈します。
// 数値でない場合や 1 未満の場合は 1 を返し、エラーにはしません。
func ParseIndex(raw string) int {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// New は総件数とページ番号から Page を作成します。
// 範囲外のページ番号もそのまま受け付け、その場合は空の結果になるオフセットを返します。
func New(itemCount, pageIndex, pageSize int) Page {
	if itemCount < 0 {
		itemCount = 0
	}
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultSize
	}
	// offset+limit が int に収まる範囲に丸める。これを超える番号はどのみち空ページ。
	if maxIndex := math.MaxInt / pageSize; pageIndex > maxIndex {
		pageIndex = maxIndex
	}

	pageCount := (itemCount + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	return Page{
		ItemCount:   itemCount,
		PageIndex:   pageIndex,
		PageSize:    pageSize,
		PageCount:   pageCount,
		Offset:      (pageIndex - 1) * pageSize,
		Limit:       pageSize,
		HasNext:     pageIndex < pageCount,
		HasPrevious: pageIndex > 1,
	}
}

// Compute は ParseIndex と New をまとめたものです。
func Compute(itemCount int, rawPageIndex string, pageSize int) Page {
	return New(itemCount, ParseIndex(rawPageIndex), pageSize)
}
