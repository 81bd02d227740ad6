// Package main provides localization for the alphaplay CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Frame-accurate synchronized playback of color and alpha video clips.": "カラーとアルファの動画クリップをフレーム精度で同期再生します。",

		// Commands
		"Play clips in sync against the display refresh.": "ディスプレイのリフレッシュに同期してクリップを再生",
		"Print the video track timing of MP4 files.":      "MP4ファイルの映像トラックのタイミングを表示",
		"Show version information.":                       "バージョン情報を表示",
		"alphaplay version %s":                            "alphaplay バージョン %s",

		// Probe output
		"progressive":                    "プログレッシブ",
		"fragmented":                     "フラグメント",
		"  codec:          %s (%s)":      "  コーデック:     %s (%s)",
		"  dimensions:     %dx%d":        "  サイズ:         %dx%d",
		"  timescale:      %d":           "  タイムスケール: %d",
		"  frames:         %d (%d sync)": "  フレーム数:     %d (同期 %d)",
		"  frame duration: %s":           "  フレーム間隔:   %s",
		"  duration:       %s":           "  長さ:           %s",

		// Summary content
		"Playback Summary": "再生サマリー",
		"Generated":        "生成日時",
		"Generated by":     "生成:",
		"Results":          "実行結果",
		"Settings":         "設定",
		"Streams":          "ストリーム",
		"Item":             "項目",
		"Value":            "値",

		// Results section
		"Clips":           "クリップ",
		"Instances":       "インスタンス数",
		"Status":          "状態",
		"Finished":        "完了",
		"Interrupted":     "中断",
		"Stopped":         "停止",
		"Start Host Time": "開始ホスト時刻",
		"Start Skew":      "開始のずれ",
		"Played":          "再生時間",
		"Refresh Ticks":   "リフレッシュ回数",
		"Frames Shown":    "表示フレーム数",
		"Loop Count":      "ループ回数",
		"Transitions":     "切り替え回数",
		"Late Starts":     "遅延開始",
		"Snapshots":       "スナップショット",

		// Settings section
		"Engine":           "エンジン",
		"Alpha Channel":    "アルファチャンネル",
		"Yes":              "あり",
		"No":               "なし",
		"Rate":             "再生速度",
		"Loop Max Count":   "最大ループ回数",
		"Forever":          "無制限",
		"Refresh Rate":     "リフレッシュレート",
		"Start Lead":       "開始までの猶予",
		"Desync Threshold": "同期ずれの閾値",

		// Streams section
		"Stream":            "ストリーム",
		"Produced":          "生成",
		"Selected":          "選択",
		"Not Yet Available": "未到着",
		"Stale":             "破棄",
		"Desync":            "同期ずれ",
	})
}
