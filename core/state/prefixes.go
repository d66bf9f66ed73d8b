package state

var (
	accountPrefix      = []byte("accounts/")
	paramPrefix        = []byte("params/")
	passStatsPrefix    = []byte("market/stats/")
	vaultKey           = []byte("market/vault")
	outpostPrefix      = []byte("outpost/record/")
	subscriptionPrefix = []byte("outpost/sub/")
)

func accountKey(addr []byte) []byte {
	return append(append([]byte{}, accountPrefix...), addr...)
}

func paramKey(name string) []byte {
	return append(append([]byte{}, paramPrefix...), name...)
}

func passStatsKey(target [20]byte) []byte {
	return append(append([]byte{}, passStatsPrefix...), target[:]...)
}

func outpostKey(addr [20]byte) []byte {
	return append(append([]byte{}, outpostPrefix...), addr[:]...)
}

func subscriptionKey(outpost, subscriber [20]byte) []byte {
	key := append(append([]byte{}, subscriptionPrefix...), outpost[:]...)
	key = append(key, '/')
	return append(key, subscriber[:]...)
}
