package stories

// DefaultImagePool is drawn from, with replacement, when regenerating synthetic stories.
func DefaultImagePool() []string {
	ids := []string{
		"1469474968028-56623f02e42e",
		"1551632811-561732d1e306",
		"1527786356703-4b100091cd2c",
		"1533105079780-92b9be482077",
		"1516685018646-549198525c1b",
		"1534422298391-e4f8c172dddb",
		"1517457373958-b7bdd4587205",
		"1529626455594-4ff0802cfb7e",
		"1514565131-fce0801e5785",
		"1504674900247-0877df9cc836",
		"1512917774080-9991f1c4c750",
		"1526336024174-e58f5cdd8e13",
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "https://images.unsplash.com/photo-" + id + "?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80"
	}
	return out
}
