package websocket

import "sort"

// channelIndex 频道 -> 连接 ID 集合，以及连接 ID -> 频道集合
// 不加锁，由 Registry 持锁访问
type channelIndex struct {
	members map[string]map[string]struct{} // channel -> connIDs
	joined  map[string]map[string]struct{} // connID -> channels
}

func newChannelIndex() *channelIndex {
	return &channelIndex{
		members: make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

// add 加入频道，已加入返回 false
func (idx *channelIndex) add(connID, channel string) bool {
	set, ok := idx.members[channel]
	if !ok {
		set = make(map[string]struct{})
		idx.members[channel] = set
	}
	if _, exists := set[connID]; exists {
		return false
	}
	set[connID] = struct{}{}

	chans, ok := idx.joined[connID]
	if !ok {
		chans = make(map[string]struct{})
		idx.joined[connID] = chans
	}
	chans[channel] = struct{}{}
	return true
}

// remove 退出频道，未加入返回 false；频道为空时删除
func (idx *channelIndex) remove(connID, channel string) bool {
	set, ok := idx.members[channel]
	if !ok {
		return false
	}
	if _, exists := set[connID]; !exists {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(idx.members, channel)
	}

	if chans, ok := idx.joined[connID]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(idx.joined, connID)
		}
	}
	return true
}

// removeAll 连接断开时退出全部频道
func (idx *channelIndex) removeAll(connID string) {
	for channel := range idx.joined[connID] {
		if set, ok := idx.members[channel]; ok {
			delete(set, connID)
			if len(set) == 0 {
				delete(idx.members, channel)
			}
		}
	}
	delete(idx.joined, connID)
}

// connIDs 频道内的连接 ID
func (idx *channelIndex) connIDs(channel string) []string {
	set := idx.members[channel]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// channelsOf 连接加入的频道（已排序）
func (idx *channelIndex) channelsOf(connID string) []string {
	chans := idx.joined[connID]
	out := make([]string, 0, len(chans))
	for ch := range chans {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

func (idx *channelIndex) count(channel string) int {
	return len(idx.members[channel])
}

func (idx *channelIndex) channelCount() int {
	return len(idx.members)
}
