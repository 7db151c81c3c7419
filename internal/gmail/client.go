package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// Client is the mail-fetch collaborator: it hides OAuth and the Gmail wire
// format and hands the rest of the program plain Email records.
type Client struct {
	srv *gmail.Service
}

// NewClient builds a Gmail client from the OAuth client secrets in
// credentialsFile. A cached token in tokenFile is reused when present;
// otherwise the console authorization flow runs and the new token is saved
// for subsequent runs.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*Client, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	httpClient, err := getOAuthClient(ctx, oauthConfig, tokenFile)
	if err != nil {
		return nil, err
	}
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

func getOAuthClient(ctx context.Context, config *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = getTokenFromConsole(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			log.Warnf("Unable to cache oauth token: %v", err)
		}
	}
	return config.Client(ctx, tok), nil
}

func getTokenFromConsole(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// Fetch lists up to maxResults recent inbox messages (optionally narrowed by
// a Gmail search query) and returns them as Email records. Messages whose
// details cannot be retrieved are skipped with a warning rather than failing
// the whole fetch.
func (c *Client) Fetch(ctx context.Context, maxResults int64, query string) ([]Email, error) {
	call := c.srv.Users.Messages.List(user).MaxResults(maxResults).LabelIds("INBOX")
	if query != "" {
		call = call.Q(query)
	}
	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	emails := make([]Email, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg, err := c.srv.Users.Messages.Get(user, m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			log.Warnf("Unable to retrieve message %s: %v", m.Id, err)
			continue
		}
		emails = append(emails, parseEmail(msg))
	}
	return emails, nil
}

func parseEmail(msg *gmail.Message) Email {
	email := Email{ID: msg.Id, Snippet: msg.Snippet}
	if msg.Payload == nil {
		return email
	}

	email.Headers = headersMap(msg.Payload.Headers)
	email.Sender = email.Headers["From"]
	email.Subject = email.Headers["Subject"]

	// Some messages (e.g. pure HTML newsletters) come back with an empty
	// snippet; derive one from the body so the classifier gets some text.
	if email.Snippet == "" {
		if body := extractBody(msg.Payload); body != "" {
			email.Snippet = Snippet(body, defaultSnippetSentences, defaultSnippetChars)
		}
	}
	return email
}

// headersMap flattens the Gmail header list into a name -> value map.
// Later duplicates win.
func headersMap(headers []*gmail.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Name] = h.Value
	}
	return m
}

// ListLabels returns label name -> id for the user's own labels and the
// system CATEGORY_* labels, with pretty display names.
func (c *Client) ListLabels(ctx context.Context) (map[string]string, error) {
	resp, err := c.srv.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list labels: %w", err)
	}
	out := make(map[string]string)
	for _, l := range resp.Labels {
		if l.Type == "user" || (l.Type == "system" && strings.HasPrefix(l.Name, "CATEGORY_")) {
			out[PrettyLabel(l.Name)] = l.Id
		}
	}
	return out, nil
}

// ApplyLabel adds the given label to a message.
func (c *Client) ApplyLabel(ctx context.Context, messageID, labelID string) error {
	_, err := c.srv.Users.Messages.Modify(user, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to apply label %s to message %s: %w", labelID, messageID, err)
	}
	return nil
}
