package connect4

const (
	luaAppendEvents = `
		-- Atomically append events to a stream if its precondition holds
		-- KEYS[1] = event list key
		-- ARGV[1] = expectation mode (any, no_stream, exists, version)
		-- ARGV[2] = expected version (used by mode 'version')
		-- ARGV[3..N] = event data (JSON)
		-- Returns: {1, newLength} on success, or {0, currentLength}

		local currentLen = redis.call('LLEN', KEYS[1])
		local mode = ARGV[1]
		local expected = tonumber(ARGV[2])

		if (mode == 'no_stream' and currentLen ~= 0) or
			(mode == 'exists' and currentLen == 0) or
			(mode == 'version' and currentLen ~= expected) then
			return {0, currentLen}
		end

		local chunkSize = 128
		local startIdx = 3

		while startIdx <= #ARGV do
			local endIdx = math.min(startIdx + chunkSize - 1, #ARGV)
			local chunk = {}
			for i = startIdx, endIdx do
				table.insert(chunk, ARGV[i])
			end
			redis.call('RPUSH', KEYS[1], unpack(chunk))
			startIdx = endIdx + 1
		end

		return {1, redis.call('LLEN', KEYS[1])}
		`

	luaGetEvents = `
		-- Get events from a stream starting at a given sequence
		-- KEYS[1] = event list key
		-- ARGV[1] = starting sequence (0-based)
		-- Returns: {0} if the stream does not exist, or {length, events}

		local currentLen = redis.call('LLEN', KEYS[1])
		if currentLen == 0 then
			return {0}
		end

		local fromSeq = tonumber(ARGV[1])
		return {currentLen, redis.call('LRANGE', KEYS[1], fromSeq, -1)}
		`
)
