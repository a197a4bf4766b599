package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer provides utilities for generating adversarial input strings
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new Fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// FuzzEventID generates invalid event ID test cases
func (f *Fuzzer) FuzzEventID() []string {
	return []string{
		// Empty and boundary cases
		"",
		"041c2d52-1230-4f82-be89-fb6abdec970",   // one short
		"041c2d52-1230-4f82-be89-fb6abdec970ff", // one long
		"041c2d5212304f82be89fb6abdec970f",      // no hyphens
		"{041c2d52-1230-4f82-be89-fb6abdec970f}",
		"urn:uuid:041c2d52-1230-4f82-be89-fb6abdec970f",
		"041c2d52-1230-4f82-be89-fb6abdec970g",

		// Path traversal dressed as an ID
		"../../../../login",
		"041c2d52-1230-4f82-be89-fb6abdec970f/../../admin",
		"041c2d52-1230-4f82-be89/fb6abdec970f",

		// Special characters
		"041c2d52-1230-4f82-be89-fb6abdec970\n",
		"041c2d52-1230-4f82-be89-fb6abdec970\x00",
		"041c2d52-1230-4f82-be89-fb6abdec97?f",
		"041c2d52-1230-4f82-be89-fb6abdec97#f",
		"041c2d52 1230 4f82 be89 fb6abdec970f",

		// SQL injection
		"' OR '1'='1",
		"1; DROP TABLE events--",

		// Unicode
		"041c2d52-1230-4f82-be89-fb6abdec970а",
		"тест",
	}
}

// FuzzDataPath generates page paths that must never leave the base URL
func (f *Fuzzer) FuzzDataPath() []string {
	paths := []string{
		"",
		"/",
		"/events/search",
		"//evil.example/events",
		"https://evil.example/events",
		"events/search?_routes=root",
		"events/search#frag",
		"events//search",
		"events/./search",
		"events/%2e%2e/login",
		"events search",
		strings.Repeat("a/", 300),
	}
	paths = append(paths, f.GeneratePathTraversals()...)
	for _, c := range f.GenerateControlCharString() {
		paths = append(paths, "events/"+c)
	}
	return paths
}

// FuzzUserAgent generates malicious User-Agent test cases
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		// Header injection via newlines
		"MyApp/1.0\nX-Evil-Header: injected",
		"MyApp/1.0\rX-Evil-Header: injected",
		"MyApp/1.0\r\nX-Evil-Header: injected",
		"MyApp/1.0\n\nInjected Body",

		// Extremely long
		strings.Repeat("a", 257),
		strings.Repeat("a", 10000),

		// Mixed injection attempts
		"MyApp/1.0\r\nContent-Length: 0\r\n\r\nGET /evil HTTP/1.1",
		"MyApp/1.0\nSet-Cookie: rouvy-session=stolen",
	}
}

// GenerateRandomString returns length random characters
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		special = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"
	)

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharString generates a string with various control characters
func (f *Fuzzer) GenerateControlCharString() []string {
	var results []string
	for i := 0; i < 32; i++ {
		if unicode.IsControl(rune(i)) {
			results = append(results, "test"+string(rune(i))+"string")
		}
	}
	return append(results, "test\x7fstring")
}

// GeneratePathTraversals generates path traversal attack patterns
func (f *Fuzzer) GeneratePathTraversals() []string {
	return []string{
		"../../etc/passwd",
		"../../../etc/passwd",
		"events/../../login",
		"..\\..\\windows\\system32\\config\\sam",
		"..%2F..%2F..%2Fetc%2Fpasswd",
		"....//....//....//etc/passwd",
		"/etc/passwd",
		"\\windows\\system32",
		"/.../../etc/passwd",
	}
}
