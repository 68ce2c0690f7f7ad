package core

import (
	"sort"

	"github.com/fvl-lang/fvl/ir"
)

// StateRoot derives a deterministic digest of the entire world, sorted so
// that two independently-replayed worlds with the same history hash
// identically regardless of map iteration order.
func StateRoot(w *World) ir.Hash {
	var buf []byte
	buf = append(buf, w.Admin[:]...)
	buf = appendU64(buf, w.BlockNumber)

	addrs := make([]ir.Address, 0, len(w.Accounts))
	for a := range w.Accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrLess(addrs[i], addrs[j]) })
	buf = appendU64(buf, uint64(len(addrs)))
	for _, addr := range addrs {
		buf = append(buf, addr[:]...)
		buf = appendAccount(buf, w.Accounts[addr])
	}

	ids := make([]ir.Hash, 0, len(w.Systems))
	for id := range w.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hashLess(ids[i], ids[j]) })
	buf = appendU64(buf, uint64(len(ids)))
	for _, id := range ids {
		buf = append(buf, id[:]...)
		buf = appendSystem(buf, w.Systems[id])
	}

	nftKeys := make([]string, 0, len(w.NFTInstances))
	for k := range w.NFTInstances {
		nftKeys = append(nftKeys, k)
	}
	sort.Strings(nftKeys)
	buf = appendU64(buf, uint64(len(nftKeys)))
	for _, k := range nftKeys {
		buf = appendBytes(buf, []byte(k))
	}

	return ir.Sum(buf)
}

func addrLess(a, b ir.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func hashLess(a, b ir.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func appendAccount(buf []byte, a *Account) []byte {
	b16 := a.Eth.Bytes16()
	buf = append(buf, b16[:]...)
	buf = appendU64(buf, a.Nonce)

	keys := sortedKeys(a.ERC20)
	buf = appendU64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = appendBytes(buf, []byte(k))
		b := a.ERC20[k].Bytes16()
		buf = append(buf, b[:]...)
	}

	keys = sortedKeys(a.ERC1155)
	buf = appendU64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = appendBytes(buf, []byte(k))
		b := a.ERC1155[k].Bytes16()
		buf = append(buf, b[:]...)
	}

	tokens := make([]string, 0, len(a.ERC721))
	for t := range a.ERC721 {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	buf = appendU64(buf, uint64(len(tokens)))
	for _, t := range tokens {
		buf = appendBytes(buf, []byte(t))
		ids := make([]string, 0, len(a.ERC721[t]))
		for id := range a.ERC721[t] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		buf = appendU64(buf, uint64(len(ids)))
		for _, id := range ids {
			buf = appendBytes(buf, []byte(id))
		}
	}
	return buf
}

func appendSystem(buf []byte, s *System) []byte {
	buf = append(buf, s.Deployer[:]...)
	buf = appendU64(buf, s.DeployedAt)
	buf = append(buf, boolByte(s.Paused))

	keys := sortedKeys(s.OracleValues)
	buf = appendU64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = appendBytes(buf, []byte(k))
		b := s.OracleValues[k].Bytes16()
		buf = append(buf, b[:]...)
	}

	perms := make([]string, 0, len(s.EnabledPermissions))
	for p := range s.EnabledPermissions {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	buf = appendU64(buf, uint64(len(perms)))
	for _, p := range perms {
		buf = appendBytes(buf, []byte(p))
	}

	keys = sortedKeys(s.TotalCollected)
	buf = appendU64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = appendBytes(buf, []byte(k))
		b := s.TotalCollected[k].Bytes16()
		buf = append(buf, b[:]...)
	}

	contributors := make([]ir.Address, 0, len(s.Contributors))
	for a := range s.Contributors {
		contributors = append(contributors, a)
	}
	sort.Slice(contributors, func(i, j int) bool { return addrLess(contributors[i], contributors[j]) })
	buf = appendU64(buf, uint64(len(contributors)))
	for _, a := range contributors {
		buf = append(buf, a[:]...)
		b := s.Contributors[a].Bytes16()
		buf = append(buf, b[:]...)
	}
	return buf
}

func sortedKeys(m map[string]ir.Amount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
