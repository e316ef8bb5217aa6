package poll

import "github.com/redis/go-redis/v9"

// Vote transaction outcomes returned as the first element of the script reply.
const (
	voteStatusOK             = "OK"
	voteStatusPollNotFound   = "POLL_NOT_FOUND"
	voteStatusOptionNotFound = "OPTION_NOT_FOUND"
	voteStatusAlreadyVoted   = "ALREADY_VOTED"
	voteStatusRateLimited    = "RATE_LIMITED"
)

// voteScript runs the whole vote as one server-side step.
//
// KEYS: poll document, vote attempt counter, origin lock, fingerprint lock.
// ARGV: option id, max attempts, attempt window in seconds.
//
// Order: existence, attempt limit, duplicate check, option lookup, then the
// tally write and both locks. Locks inherit the poll's remaining lifetime.
var voteScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return {'POLL_NOT_FOUND'}
end

local attempts = redis.call('INCR', KEYS[2])
if attempts == 1 or redis.call('TTL', KEYS[2]) == -1 then
  redis.call('EXPIRE', KEYS[2], ARGV[3])
end
if attempts > tonumber(ARGV[2]) then
  return {'RATE_LIMITED'}
end

if redis.call('EXISTS', KEYS[3]) == 1 or redis.call('EXISTS', KEYS[4]) == 1 then
  return {'ALREADY_VOTED'}
end

local ok, poll = pcall(cjson.decode, raw)
if not ok or type(poll) ~= 'table' or type(poll.options) ~= 'table' then
  return {'POLL_NOT_FOUND'}
end

local option = nil
for _, candidate in ipairs(poll.options) do
  if type(candidate) == 'table' and candidate.id == ARGV[1] then
    option = candidate
    break
  end
end
if option == nil then
  return {'OPTION_NOT_FOUND'}
end

option.votes = (tonumber(option.votes) or 0) + 1
poll.totalVotes = (tonumber(poll.totalVotes) or 0) + 1
local encoded = cjson.encode(poll)

local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], encoded, 'PX', ttl)
  redis.call('SET', KEYS[3], '1', 'PX', ttl, 'NX')
  redis.call('SET', KEYS[4], '1', 'PX', ttl, 'NX')
else
  redis.call('SET', KEYS[1], encoded)
  redis.call('SET', KEYS[3], '1', 'NX')
  redis.call('SET', KEYS[4], '1', 'NX')
end

return {'OK', encoded}
`)
