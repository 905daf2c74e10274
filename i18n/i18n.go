// Package i18n holds the UI string tables. The tem_* keys are the
// identifiers referenced by the page templates; they depend on the locale
// only and are never computed at request time.
package i18n

import "fmt"

// Locales supported by the dashboard, in menu order.
var Locales = []string{"en-US", "zh-CN", "vi-VN"}

// Table maps locale code -> string key -> localized text. Built once at
// startup and read-only afterwards.
type Table map[string]map[string]string

// Supported reports whether lang is a known locale code.
func (t Table) Supported(lang string) bool {
	_, ok := t[lang]
	return ok
}

// Strings returns the key table for a locale. The caller must have
// validated lang first.
func (t Table) Strings(lang string) map[string]string {
	return t[lang]
}

// New builds the locale table. Every locale must define exactly the same
// key set; a mismatch is a packaging error and fails initialization.
func New() (Table, error) {
	en := map[string]string{
		"tem_language":                       "en-US",
		"tem_day":                            "DAY",
		"tem_night":                          "NIGHT",
		"tem_previous_day":                   "previous day",
		"tem_previous_shift":                 "previous shift",
		"tem_today":                          "today",
		"tem_viewing_data":                   "Viewing data",
		"tem_colon":                          ": ",
		"tem_home":                           "Home",
		"tem_quantity_of_pass_fail":          "quantity of Pass | Fail",
		"tem_yield_of_shift":                 "yield of shift",
		"tem_fail_record_details":            "Fail record details",
		"tem_query_400_records_of_cell":      "query 400 records of CELL",
		"tem_query_sn_history":               "query SN history (auto)",
		"tem_query_sn_history_all":           "query SN history (all )",
		"tem_key_name_of_bgibest":            "key name of Bgibest",
		"tem_port_config_of_terminal_server": "port config of Router",
		"tem_line_0":                         "line 0",
		"tem_line_1":                         "line 1",
		"tem_line_2":                         "line 2",
		"tem_line_3":                         "line 3",
		"tem_submit":                         "Submit",
		"tem_local_time":                     "Local time",
		"tem_sort_able":                      "you can click the table header to sort",
	}
	zh := map[string]string{
		"tem_language":                       "zh-CN",
		"tem_day":                            "白班",
		"tem_night":                          "晚班",
		"tem_previous_day":                   "前一天",
		"tem_previous_shift":                 "前一班",
		"tem_today":                          "今天",
		"tem_viewing_data":                   "当前页面数据",
		"tem_colon":                          "：",
		"tem_home":                           "首页",
		"tem_quantity_of_pass_fail":          "每班测试 Pass | Fail 数量",
		"tem_yield_of_shift":                 "每班良率",
		"tem_fail_record_details":            "每班 Fail 记录详细信息",
		"tem_query_400_records_of_cell":      "查询 CELL 最近400次记录",
		"tem_query_sn_history":               "查询 SN 的记录（仅自动化线）",
		"tem_query_sn_history_all":           "查询 SN 的记录（所有）",
		"tem_key_name_of_bgibest":            "Bgibest 各按键的名字",
		"tem_port_config_of_terminal_server": "路由 Port 的使用情况",
		"tem_line_0":                         "0线",
		"tem_line_1":                         "1线",
		"tem_line_2":                         "2线",
		"tem_line_3":                         "3线",
		"tem_submit":                         "查询",
		"tem_local_time":                     "本地时间",
		"tem_sort_able":                      "点击表头可以排序",
	}
	// Vietnamese UI copy was never translated on the floor; the locale
	// exists so the language switcher and URLs stay stable.
	vi := map[string]string{
		"tem_language":                       "vi-VN",
		"tem_day":                            "DAY",
		"tem_night":                          "NIGHT",
		"tem_previous_day":                   "previous day",
		"tem_previous_shift":                 "previous shift",
		"tem_today":                          "today",
		"tem_viewing_data":                   "Viewing data",
		"tem_colon":                          ": ",
		"tem_home":                           "Home",
		"tem_quantity_of_pass_fail":          "quantity of Pass | Fail",
		"tem_yield_of_shift":                 "yield of shift",
		"tem_fail_record_details":            "Fail record details",
		"tem_query_400_records_of_cell":      "query 400 records of CELL",
		"tem_query_sn_history":               "query SN history (auto)",
		"tem_query_sn_history_all":           "query SN history (all )",
		"tem_key_name_of_bgibest":            "key name of Bgibest",
		"tem_port_config_of_terminal_server": "port config of Router",
		"tem_line_0":                         "line 0",
		"tem_line_1":                         "line 1",
		"tem_line_2":                         "line 2",
		"tem_line_3":                         "line 3",
		"tem_submit":                         "Submit",
		"tem_local_time":                     "Local time",
		"tem_sort_able":                      "you can click the table header to sort",
	}

	table := Table{"en-US": en, "zh-CN": zh, "vi-VN": vi}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t Table) validate() error {
	ref := t[Locales[0]]
	for _, lang := range Locales {
		m, ok := t[lang]
		if !ok {
			return fmt.Errorf("i18n: locale %s missing", lang)
		}
		if len(m) != len(ref) {
			return fmt.Errorf("i18n: locale %s has %d keys, %s has %d", lang, len(m), Locales[0], len(ref))
		}
		for k := range ref {
			if _, ok := m[k]; !ok {
				return fmt.Errorf("i18n: locale %s missing key %s", lang, k)
			}
		}
	}
	return nil
}
