package auth

import "testing"

// TestFriendlyMessage_KnownPatterns は既知パターンの変換を検証する。
func TestFriendlyMessage_KnownPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"ログイン失敗",
			"Invalid login credentials",
			"Invalid email or password. Please try again.",
		},
		{
			"ログイン失敗（別形式）",
			"invalid email or password",
			"Invalid email or password. Please try again.",
		},
		{
			"登録済みユーザー",
			"User already registered",
			"An account with this email already exists. Please sign in instead.",
		},
		{
			"登録済みユーザー（別形式）",
			"This email has already been registered",
			"An account with this email already exists. Please sign in instead.",
		},
		{
			"弱いパスワード",
			"Password should be at least 6 characters",
			"Password must be at least 6 characters long.",
		},
		{
			"短いパスワード",
			"password too short",
			"Password must be at least 6 characters long.",
		},
		{
			"不正なメールアドレス",
			"Invalid email address",
			"Please enter a valid email address.",
		},
		{
			"レート制限",
			"Rate limit exceeded",
			"Too many attempts. Please wait a moment and try again.",
		},
		{
			"リクエスト過多",
			"too many requests, slow down",
			"Too many attempts. Please wait a moment and try again.",
		},
		{
			"メール未確認",
			"Email not confirmed",
			"Please check your email and confirm your account before signing in.",
		},
		{
			"ネットワークエラー",
			"network error occurred",
			"Unable to connect. Please check your internet connection and try again.",
		},
		{
			"フェッチ失敗",
			"Failed to fetch",
			"Unable to connect. Please check your internet connection and try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FriendlyMessage(tt.input); got != tt.want {
				t.Errorf("FriendlyMessage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestFriendlyMessage_CaseInsensitive は大文字小文字を区別しないことを検証する。
func TestFriendlyMessage_CaseInsensitive(t *testing.T) {
	want := "Invalid email or password. Please try again."
	if got := FriendlyMessage("INVALID LOGIN CREDENTIALS"); got != want {
		t.Errorf("FriendlyMessage = %q, want %q", got, want)
	}
}

// TestFriendlyMessage_FirstMatchWins はルールが先頭から順に評価されることを検証する。
func TestFriendlyMessage_FirstMatchWins(t *testing.T) {
	// "invalid login credentials" と "network" の両方を含む場合、先のルールが勝つ
	got := FriendlyMessage("invalid login credentials due to network issue")
	want := "Invalid email or password. Please try again."
	if got != want {
		t.Errorf("FriendlyMessage = %q, want %q", got, want)
	}
}

// TestFriendlyMessage_PassThrough は未知の非空メッセージがそのまま返ることを検証する。
func TestFriendlyMessage_PassThrough(t *testing.T) {
	input := "Some unknown database error"
	if got := FriendlyMessage(input); got != input {
		t.Errorf("FriendlyMessage(%q) = %q, want pass-through", input, got)
	}
}

// TestFriendlyMessage_Empty は空入力に汎用メッセージが返ることを検証する。
func TestFriendlyMessage_Empty(t *testing.T) {
	want := "An unexpected error occurred. Please try again."
	if got := FriendlyMessage(""); got != want {
		t.Errorf("FriendlyMessage(\"\") = %q, want %q", got, want)
	}
}
