package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUniverse(t *testing.T, emails ...string) *Universe {
	t.Helper()
	u := &Universe{index: make(map[string]int)}
	for _, e := range emails {
		n := Normalize(e)
		if _, dup := u.index[n]; dup {
			continue
		}
		u.index[n] = len(u.Contacts)
		u.Contacts = append(u.Contacts, Contact{Email: e, Normalized: n})
	}
	return u
}

func testSet(name string, emails ...string) *OutcomeSet {
	s := &OutcomeSet{Name: name, members: make(map[string]struct{})}
	for _, e := range emails {
		s.members[Normalize(e)] = struct{}{}
	}
	return s
}

const fallback = "Upload Failure (Derived)"

func TestClassify_Scenario(t *testing.T) {
	u := testUniverse(t, "a@x.com", "b@x.com", "c@x.com")
	categories := []*OutcomeSet{
		testSet("Successful", "a@x.com"),
		testSet("Hard Bounce", "b@x.com"),
		testSet("Soft Bounce"),
	}

	r := Classify(u, categories, fallback)

	require.Len(t, r.Entries, 3)
	assert.Equal(t, Entry{Email: "a@x.com", Status: "Successful"}, r.Entries[0])
	assert.Equal(t, Entry{Email: "b@x.com", Status: "Hard Bounce"}, r.Entries[1])
	assert.Equal(t, Entry{Email: "c@x.com", Status: fallback}, r.Entries[2])

	assert.Equal(t, map[string]int{
		"Successful":  1,
		"Hard Bounce": 1,
		"Soft Bounce": 0,
		fallback:      1,
	}, r.Counts)

	assert.Equal(t, 3, r.TotalContacts)
	assert.Equal(t, 1, r.SuccessfulCount)
	assert.Equal(t, 2, r.FailureCount)
	assert.Equal(t, []string{"Successful", "Hard Bounce", "Soft Bounce", fallback}, r.Statuses)
	assert.NotEmpty(t, r.ID)
}

func TestClassify_HighestPriorityWins(t *testing.T) {
	u := testUniverse(t, "both@x.com")
	categories := []*OutcomeSet{
		testSet("Successful", "both@x.com"),
		testSet("Hard Bounce", "both@x.com"),
		testSet("Soft Bounce", "both@x.com"),
	}

	r := Classify(u, categories, fallback)
	assert.Equal(t, "Successful", r.Entries[0].Status)
	assert.Equal(t, 1, r.Counts["Successful"])
	assert.Equal(t, 0, r.Counts["Hard Bounce"])
}

func TestClassify_FallbackWhenNoSetMatches(t *testing.T) {
	u := testUniverse(t, "ghost@x.com")
	categories := []*OutcomeSet{
		testSet("Successful"),
		testSet("Hard Bounce"),
		testSet("Soft Bounce"),
	}

	r := Classify(u, categories, fallback)
	assert.Equal(t, fallback, r.Entries[0].Status)
	assert.Equal(t, 1, r.Counts[fallback])
}

func TestClassify_EveryContactAppearsExactlyOnce(t *testing.T) {
	u := testUniverse(t, "a@x.com", "A@X.com", " a@x.com ", "b@x.com")
	r := Classify(u, []*OutcomeSet{testSet("Successful", "a@x.com")}, fallback)

	require.Len(t, r.Entries, 2)
	seen := map[string]int{}
	for _, e := range r.Entries {
		seen[Normalize(e.Email)]++
	}
	assert.Equal(t, map[string]int{"a@x.com": 1, "b@x.com": 1}, seen)
}

func TestClassify_BasicTwoStatusVariant(t *testing.T) {
	u := testUniverse(t, "a@x.com", "b@x.com")
	categories := []*OutcomeSet{testSet("Delivered", "a@x.com")}

	r := Classify(u, categories, "Not Delivered")

	assert.Equal(t, "Delivered", r.Entries[0].Status)
	assert.Equal(t, "Not Delivered", r.Entries[1].Status)
	assert.Equal(t, 1, r.SuccessfulCount)
	assert.Equal(t, 1, r.FailureCount)

	// An address absent from the universe is a distinct not-found outcome,
	// not "Delivered".
	res := r.Lookup("zzz@nowhere.com")
	assert.False(t, res.Found)
	assert.Empty(t, res.Status)
}

func TestLookup_CaseAndWhitespaceInvariant(t *testing.T) {
	u := testUniverse(t, "Foo@Bar.com")
	r := Classify(u, []*OutcomeSet{testSet("Successful", "foo@bar.com")}, fallback)

	for _, q := range []string{"Foo@Bar.com", " foo@bar.com ", "foo@bar.com", "FOO@BAR.COM"} {
		res := r.Lookup(q)
		require.True(t, res.Found, "query %q", q)
		assert.Equal(t, "Successful", res.Status, "query %q", q)
		assert.Equal(t, "Foo@Bar.com", res.Email, "query %q", q)
	}
}

func TestLookup_NotFoundIsNotAnError(t *testing.T) {
	u := testUniverse(t, "a@x.com")
	r := Classify(u, nil, fallback)

	res := r.Lookup("zzz@nowhere.com")
	assert.False(t, res.Found)
}

func TestClassify_NoCategories(t *testing.T) {
	u := testUniverse(t, "a@x.com")
	r := Classify(u, nil, fallback)

	assert.Equal(t, fallback, r.Entries[0].Status)
	assert.Equal(t, 0, r.SuccessfulCount)
	assert.Equal(t, 1, r.FailureCount)
	assert.Equal(t, []string{fallback}, r.Statuses)
}

func TestWriteCSV_DeterministicAcrossRuns(t *testing.T) {
	u := testUniverse(t, "A@X.com", "b@x.com", "c@x.com")
	categories := []*OutcomeSet{
		testSet("Successful", "a@x.com"),
		testSet("Hard Bounce", "b@x.com"),
	}

	var first, second bytes.Buffer
	require.NoError(t, Classify(u, categories, fallback).WriteCSV(&first))
	require.NoError(t, Classify(u, categories, fallback).WriteCSV(&second))

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t,
		"Email,Status\nA@X.com,Successful\nb@x.com,Hard Bounce\nc@x.com,Upload Failure (Derived)\n",
		first.String())
}
