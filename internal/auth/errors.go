package auth

// Kind はエラーの種別を表すタグです。
// 呼び出し側は型アサーションではなくこのタグで分岐します。
type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindAccountSuspended   Kind = "account_suspended"
	KindRateLimited        Kind = "rate_limited"
	KindSessionInvalid     Kind = "session_invalid"
)

// Error は種別タグ付きの認証エラーです。
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// 認証エラーはここで一元定義する。
// 未知のメールアドレスとパスワード不一致はユーザー列挙を防ぐため同一のエラーを返します。
var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "メールアドレスまたはパスワードが正しくありません"}
	ErrAccountSuspended   = &Error{Kind: KindAccountSuspended, Message: "アカウントは現在利用できません"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "このメールアドレスは既に登録されています"}
)
