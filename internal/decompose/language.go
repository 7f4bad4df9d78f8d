// internal/decompose/language.go
package decompose

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is a detected page language.
type Language struct {
	Code string
	Name string
}

var (
	htmlLangRegex = regexp.MustCompile(`(?i)<html[^>]*\slang\s*=\s*["']([a-zA-Z-]+)["']`)
	metaLangRegex = regexp.MustCompile(`(?i)<meta[^>]*http-equiv\s*=\s*["']content-language["'][^>]*content\s*=\s*["']([a-zA-Z-]+)["']`)
	// Some pages put content before http-equiv.
	metaLangRegexAlt = regexp.MustCompile(`(?i)<meta[^>]*content\s*=\s*["']([a-zA-Z-]+)["'][^>]*http-equiv\s*=\s*["']content-language["']`)
)

// languageNames covers the languages we carry a UI glossary for, plus a few
// we can at least name in the generic instruction.
var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"sv": "Swedish",
	"da": "Danish",
	"tr": "Turkish",
}

// uiGlossaries maps a language code to translations of the UI terms the LLM
// most often needs to find on a page. Selectors built from English terms
// against a localized page was an observed root cause of validation
// failures, so these are embedded into every prompt for a non-English page.
var uiGlossaries = map[string]map[string]string{
	"de": {"login": "Anmelden", "logout": "Abmelden", "submit": "Absenden", "search": "Suchen", "username": "Benutzername", "password": "Passwort", "register": "Registrieren", "cancel": "Abbrechen", "next": "Weiter", "save": "Speichern"},
	"fr": {"login": "Connexion", "logout": "Déconnexion", "submit": "Envoyer", "search": "Rechercher", "username": "Nom d'utilisateur", "password": "Mot de passe", "register": "S'inscrire", "cancel": "Annuler", "next": "Suivant", "save": "Enregistrer"},
	"es": {"login": "Iniciar sesión", "logout": "Cerrar sesión", "submit": "Enviar", "search": "Buscar", "username": "Nombre de usuario", "password": "Contraseña", "register": "Registrarse", "cancel": "Cancelar", "next": "Siguiente", "save": "Guardar"},
	"it": {"login": "Accedi", "logout": "Esci", "submit": "Invia", "search": "Cerca", "username": "Nome utente", "password": "Password", "register": "Registrati", "cancel": "Annulla", "next": "Avanti", "save": "Salva"},
	"nl": {"login": "Inloggen", "logout": "Uitloggen", "submit": "Verzenden", "search": "Zoeken", "username": "Gebruikersnaam", "password": "Wachtwoord", "register": "Registreren", "cancel": "Annuleren", "next": "Volgende", "save": "Opslaan"},
	"pl": {"login": "Zaloguj się", "logout": "Wyloguj się", "submit": "Wyślij", "search": "Szukaj", "username": "Nazwa użytkownika", "password": "Hasło", "register": "Zarejestruj się", "cancel": "Anuluj", "next": "Dalej", "save": "Zapisz"},
	"pt": {"login": "Entrar", "logout": "Sair", "submit": "Enviar", "search": "Pesquisar", "username": "Nome de usuário", "password": "Senha", "register": "Cadastrar", "cancel": "Cancelar", "next": "Próximo", "save": "Salvar"},
	"ru": {"login": "Войти", "logout": "Выйти", "submit": "Отправить", "search": "Поиск", "username": "Имя пользователя", "password": "Пароль", "register": "Зарегистрироваться", "cancel": "Отмена", "next": "Далее", "save": "Сохранить"},
	"zh": {"login": "登录", "logout": "退出", "submit": "提交", "search": "搜索", "username": "用户名", "password": "密码", "register": "注册", "cancel": "取消", "next": "下一步", "save": "保存"},
	"ja": {"login": "ログイン", "logout": "ログアウト", "submit": "送信", "search": "検索", "username": "ユーザー名", "password": "パスワード", "register": "登録", "cancel": "キャンセル", "next": "次へ", "save": "保存"},
}

// DetectLanguage inspects raw markup for a language declaration: the <html>
// lang attribute first, then a content-language meta tag, defaulting to
// English. Region subtags are dropped ("de-DE" becomes "de").
func DetectLanguage(html string) Language {
	code := ""
	if m := htmlLangRegex.FindStringSubmatch(html); m != nil {
		code = m[1]
	} else if m := metaLangRegex.FindStringSubmatch(html); m != nil {
		code = m[1]
	} else if m := metaLangRegexAlt.FindStringSubmatch(html); m != nil {
		code = m[1]
	}

	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexRune(code, '-'); idx > 0 {
		code = code[:idx]
	}
	if code == "" {
		code = "en"
	}

	name, ok := languageNames[code]
	if !ok {
		name = code
	}
	return Language{Code: code, Name: name}
}

// LanguageContext renders the prompt block for a detected language: empty
// for English, instruction plus glossary for supported languages, and a
// generic instruction for anything else.
func LanguageContext(lang Language) string {
	if lang.Code == "en" || lang.Code == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "IMPORTANT: The page is in %s. Text selectors must use the %s labels that actually appear on the page, never their English equivalents.\n", lang.Name, lang.Name)

	glossary, ok := uiGlossaries[lang.Code]
	if !ok {
		return sb.String()
	}

	sb.WriteString("Common UI terms on this page:\n")
	for _, term := range []string{"login", "logout", "submit", "search", "username", "password", "register", "cancel", "next", "save"} {
		if translated, ok := glossary[term]; ok {
			fmt.Fprintf(&sb, "  %s = %s\n", term, translated)
		}
	}
	return sb.String()
}
