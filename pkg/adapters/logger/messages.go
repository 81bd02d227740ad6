package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Playing %d clips with the %s engine at %d Hz": "%d 本のクリップを %s エンジン、%d Hz で再生します",
		"Starting session: %d clips, %d instances":     "セッションを開始: クリップ %d 本、インスタンス %d 個",
		"All instances start at host %s":               "全インスタンスをホスト時刻 %s に開始します",
		"Session complete: %d frames shown over %s":    "セッション完了: %d フレームを表示しました (経過 %s)",
		"Session limit of %s reached":                  "セッションの上限 %s に達しました",
		"Instance %d finished after %d loops":          "インスタンス %d が %d ループで終了しました",
		"Instance %d: entry %d -> %d (loop %d)":        "インスタンス %d: エントリ %d -> %d (ループ %d)",
		"Instance %d: %v":                              "インスタンス %d: %v",
		"Summary saved to %s":                          "サマリーを %s に保存しました",
		"Interrupted, shutting down...":                "中断されました。シャットダウン中...",

		// Session failures
		"Session failed: %v":                            "セッションが失敗しました: %v",
		"Failed to build playlist: %v":                  "プレイリストの作成に失敗しました: %v",
		"Failed to close instance %d: %v":               "インスタンス %d のクローズに失敗しました: %v",
		"Failed to save timeline: %v":                   "タイムラインの保存に失敗しました: %v",
		"Failed to save summary: %v":                    "サマリーの保存に失敗しました: %v",
		"Skipped %d snapshots of frames without pixels": "画素を持たないフレームのスナップショット %d 件をスキップしました",

		// Stream output
		"Loading asset":                                                 "アセットを読み込み中",
		"Asset failed to load":                                          "アセットの読み込みに失敗しました",
		"Asset ready: %dx%d, %d frames at %.2f fps, duration %s":        "アセット準備完了: %dx%d, %d フレーム, %.2f fps, 長さ %s",
		"Asset reported invalid timing: duration %s, frame duration %s": "アセットのタイミングが不正です: 長さ %s, フレーム間隔 %s",
		"Preroll at rate %.2f":                                          "速度 %.2f でプリロール中",
		"Preroll finished, running deferred start":                      "プリロール完了、保留中の開始を実行します",
		"Preroll interrupted, starting anyway":                          "プリロールが中断されましたが、開始します",
		"Discarded stale preroll completion":                            "古いプリロール完了通知を破棄しました",
		"Discarded stale %s":                                            "古い %s を破棄しました",
		"Sync start: item %s at host %s, rate %.2f":                     "同期開始: アイテム時刻 %s をホスト時刻 %s に、速度 %.2f",
		"Rate %.2f at host %s (item %s)":                                "速度 %.2f に変更, ホスト時刻 %s (アイテム時刻 %s)",
		"Entered last second at item %s":                                "アイテム時刻 %s で最後の1秒に入りました",
		"Load callback suppressed for secondary loop entry":             "ループ後続エントリの読み込み通知を抑制しました",
		"Playback finished":                                             "再生が終了しました",
		"Stopped":                                                       "停止しました",

		// Color and alpha
		"Color and alpha out of sync: color frame %d, alpha frame %d":       "カラーとアルファの同期ずれ: カラー フレーム %d, アルファ フレーム %d",
		"Color and alpha back in sync at frame %d":                          "フレーム %d でカラーとアルファの同期が回復しました",
		"Color and alpha timing differ: %d frames at %s vs %d frames at %s": "カラーとアルファのタイミングが異なります: %d フレーム (%s) と %d フレーム (%s)",

		// Playlist
		"First entry failed to load: %s":                            "最初のエントリの読み込みに失敗しました: %s",
		"Playback starts at host %s":                                "ホスト時刻 %s に再生を開始します",
		"Failed to start playback: %v":                              "再生の開始に失敗しました: %v",
		"Prerolling entry %d":                                       "エントリ %d をプリロール中",
		"Transition %d -> %d at host %s (loop %d)":                  "エントリ %d -> %d へ切り替え, ホスト時刻 %s (ループ %d)",
		"Entry %d not ready at its start time, starting when ready": "エントリ %d が開始時刻に準備できていません。準備完了後に開始します",
		"Failed to start entry %d: %v":                              "エントリ %d の開始に失敗しました: %v",
		"Failed to restart entry %d: %v":                            "エントリ %d の再開に失敗しました: %v",
		"Sequence complete after %d passes":                         "%d 周でシーケンスが完了しました",
	})
}
