// Package cli は ptz コマンドの実装
//
// # 責務
// - 単一カメラへの取得系コマンド (get status / position / presets)
// - 単一カメラへの操作系コマンド (set position / preset, move, stop, zoom)
// - 複数カメラを扱う制御サーバーの起動 (serve)
//
// # 仕様
//   - 設定は config.Load で読み込む。優先順位はデフォルト値 < 設定ファイル < 環境変数 < フラグ
//   - 取得結果は標準出力に YAML (既定) または JSON で書き出す
//   - ログは標準エラー出力に書き出す
//   - カメラの接続情報が不足している場合は不足している環境変数名を示して終了する
package cli
