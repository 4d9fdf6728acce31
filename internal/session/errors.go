package session

import (
	"errors"

	"ziwei/internal/export"
	"ziwei/internal/render"
)

var (
	ErrMissingBirthDate  = errors.New("missing birth date")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCalculationFailed = errors.New("calculation failed")
	ErrNoChart           = errors.New("no chart computed")
	ErrNotChoosing       = errors.New("no time choice pending")
)

// Message is the text shown to the visitor for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingBirthDate):
		return "請先輸入出生日期。"
	case errors.Is(err, ErrInvalidInput):
		return "輸入資料有誤：請確認日期與時辰。"
	case errors.Is(err, ErrCalculationFailed):
		return "演算失敗：請確認輸入資料是否正確，或切換『曆法』重算。"
	case errors.Is(err, render.ErrStructureMissing):
		return "頁面結構缺失：找不到盤面容器。"
	case errors.Is(err, ErrNoChart), errors.Is(err, export.ErrNoChart):
		return "請先啟動演算。"
	case errors.Is(err, ErrNotChoosing):
		return "目前沒有待選擇的子時。"
	default:
		return "發生未預期的錯誤，請稍後再試。"
	}
}
