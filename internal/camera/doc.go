// Package camera 複数のPTZカメラの登録と死活監視を担う
//
// # 責務
// - カメラの動的な追加・削除
// - カメラごとの ptz.Controller の生成と保持
// - getStatus による定期的な死活監視と状態の記録
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 制御サーバーから複数のカメラを操作したい
// - カメラの応答状態を一覧で確認したい
//
// 単一カメラをCLIから操作するだけなら ptz.Client を直接使う。
//
// # 仕様
//   - Manager: カメラの登録情報と Controller を RWMutex で保護したマップで管理する
//   - ControllerFactory: 本番は ClientFactory、テストは MockControllerFactory を使う
//   - IDは設定で指定するか、省略時は UUID を採番する
//   - 同じホストとチャンネルの組み合わせは二重登録できない
//   - 死活監視は errgroup で並行に実行し、同時接続数を制限する
//   - 監視結果は dahuaptz_camera_up メトリクスにも反映する
package camera
