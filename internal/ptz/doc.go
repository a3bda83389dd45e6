// Package ptz Dahua IPカメラのPTZ制御APIクライアントを提供する
//
// # 責務
// - /cgi-bin/ptz.cgi へのダイジェスト認証付きHTTP GETリクエスト
// - 移動・ズーム・停止・プリセット呼び出しなどのコマンド送信
// - getStatus レスポンス（status.A.B[0]=値 形式）のネスト構造への変換
// - getPresets レスポンスのプリセット一覧への変換
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 単一カメラのPTZを直接操作したい（Client）
// - テストでカメラの代わりを用意したい（MockController, ptztest.Server）
// - 取得済みのレスポンス文字列だけを解析したい（ParseStatus, ParsePresets）
//
// # 仕様
//   - コマンドはレスポンス本文が "OK" の場合のみ成功とする
//   - 範囲外の引数はリクエスト前に ErrOutOfRange で拒否する
//   - 位置情報はベンダーの綴り "Postion" キーから取得する
//   - 1リクエスト1レスポンスの同期処理で、状態は保持しない
package ptz
